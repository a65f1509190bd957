// Package luahost implements the host capability set on top of embedded
// Lua. Each entry module runs in its own Lua state; scripts register
// extension objects through the pluginman module:
//
//	pluginman.register_extension{
//	    setup = function() ... end,
//	    create_actions = function(window)
//	        window.create_action("myplugin_run", "Run My Plugin", "tools/scripts")
//	    end,
//	}
//
// Actions created through a window land in the host action table with a
// "menulocation" property, which the lifecycle engine uses to place them
// in the menu tree.
package luahost
