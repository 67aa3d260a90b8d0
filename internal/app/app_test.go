package app

import "testing"

func TestRunWithoutArguments(t *testing.T) {
	t.Parallel()

	if code := Run(nil); code != 2 {
		t.Fatalf("Run(nil) = %d, want 2", code)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"launch"}); code != 2 {
		t.Fatalf("Run(launch) = %d, want 2", code)
	}
}

func TestRunHelp(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"help"}); code != 0 {
		t.Fatalf("Run(help) = %d, want 0", code)
	}
}

func TestRunHashTokenRequiresToken(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"hash-token"}); code != 2 {
		t.Fatalf("Run(hash-token) = %d, want 2", code)
	}
}
