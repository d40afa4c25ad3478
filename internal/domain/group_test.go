package domain

import (
	"strings"
	"testing"
)

func TestNewGroup(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// Test valid group creation
	group, err := NewGroup("Readers", "a group for readers", "https://img.example.com/g.png")

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if group.Name != "Readers" {
		t.Errorf("Expected name %s, got %s", "Readers", group.Name)
	}

	if group.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if group.MemberCount != 0 {
		t.Errorf("Expected zero member count on a fresh group, got %d", group.MemberCount)
	}

	// Test empty name
	_, err = NewGroup("", "desc", "")
	if err != ErrEmptyGroupName {
		t.Errorf("Expected error %v, got %v", ErrEmptyGroupName, err)
	}

	// Test whitespace-only name
	_, err = NewGroup("   ", "desc", "")
	if err != ErrEmptyGroupName {
		t.Errorf("Expected error %v, got %v", ErrEmptyGroupName, err)
	}

	// Test name length bound
	_, err = NewGroup(strings.Repeat("x", 101), "desc", "")
	if err != ErrGroupNameTooLong {
		t.Errorf("Expected error %v, got %v", ErrGroupNameTooLong, err)
	}

	// 100 characters is the longest accepted name
	_, err = NewGroup(strings.Repeat("x", 100), "desc", "")
	if err != nil {
		t.Errorf("Expected no error for 100-char name, got %v", err)
	}
}

func TestMembershipStatusValues(t *testing.T) {
	t.Parallel() // Enable parallel execution
	if MembershipMember != "member" {
		t.Errorf("Expected member status %q, got %q", "member", MembershipMember)
	}
	if MembershipRequested != "requested" {
		t.Errorf("Expected requested status %q, got %q", "requested", MembershipRequested)
	}
	if MembershipNone != "" {
		t.Errorf("Expected empty none status, got %q", MembershipNone)
	}
}
