package cmd

import "testing"

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "notifyctl" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "notifyctl")
	}

	found := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range []string{"publish", "version", "completion"} {
		if !found[name] {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestPublishFlags(t *testing.T) {
	for _, flag := range []string{"event-id", "no-id", "count"} {
		if publishCmd.Flags().Lookup(flag) == nil {
			t.Errorf("publish command is missing flag %q", flag)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	for _, flag := range []string{"config", "nsqd", "timeout"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("root command is missing persistent flag %q", flag)
		}
	}
}
