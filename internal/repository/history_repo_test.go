package repository

import (
	"testing"

	"mindful-chat/internal/domain"
)

func TestBuildInsertTurns(t *testing.T) {
	query, args := buildInsertTurns("s1", []domain.Turn{
		{Role: domain.RoleSystem, Text: "preamble"},
		{Role: domain.RoleUser, Text: "hola"},
	})

	expected := "INSERT INTO chat_turns (session_id, role, content) VALUES ($1, $2, $3), ($4, $5, $6)"
	if query != expected {
		t.Fatalf("unexpected query:\n%s", query)
	}
	if len(args) != 6 {
		t.Fatalf("expected 6 args, got %d", len(args))
	}
	if args[0] != "s1" || args[1] != "system" || args[2] != "preamble" || args[4] != "user" || args[5] != "hola" {
		t.Fatalf("unexpected args %+v", args)
	}
}
