// Package hook runs user Lua scripts in response to terminal events.
//
// Scripts live in the configured hooks directory and are loaded once at
// startup. Each script registers callbacks through the termmark module:
//
//	local tm = require("termmark")
//	tm.on_command(function(ev)
//	    if ev.exit_code ~= "0" then
//	        tm.log("command failed: " .. ev.command)
//	    end
//	end)
//
// Available registrations are on_command (command finished), on_progress
// and on_clipboard. Callbacks receive a table mirroring the event's
// payload.
//
// gopher-lua's LState is not goroutine-safe, so the Runner owns a single
// goroutine that executes every Lua call; bus handlers enqueue work and
// never touch the state directly. A script error is logged and skipped,
// it never stops the terminal.
package hook
