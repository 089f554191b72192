package telegram

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kinobot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegistryListCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Start"})
	reg.RegisterCommand("/help", commands.Command{Handler: noop, Description: "Help", Aliases: []string{"h"}})
	reg.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "Stats", AdminOnly: true})
	reg.RegisterCommand("nostash", commands.Command{Handler: noop, Description: "x"})
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "dup"})

	visible := reg.ListCommands(true)
	if len(visible) != 2 || visible[0].Text != "help" || visible[1].Text != "start" {
		t.Fatalf("visible = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("all = %+v", all)
	}
	if _, cmd, _ := reg.LookupCommand("/start"); cmd.Description != "Start" {
		t.Fatal("duplicate registration replaced the original")
	}
}

func TestRegistryLookupAlias(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/help", commands.Command{Handler: noop, Description: "Help", Aliases: []string{"h"}})
	for _, in := range []string{"help", "/help", "/h", "h"} {
		key, _, ok := reg.LookupCommand(in)
		if !ok || key != "/help" {
			t.Fatalf("LookupCommand(%q) = %q, %v", in, key, ok)
		}
	}
	if _, _, ok := reg.LookupCommand("/fabc"); ok {
		t.Fatal("entity token must not resolve to a command")
	}
}
