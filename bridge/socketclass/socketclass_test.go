package socketclass

import "testing"

func TestPortMapping(t *testing.T) {
	cases := []struct {
		class Class
		want  int
	}{
		{AgentMain, 6910},
		{AgentExtra, 6911},
		{AgentBrowser, 6912},
		{AgentSsh, 6913},
	}
	for _, c := range cases {
		if got := c.class.Port(6910); got != c.want {
			t.Errorf("%s.Port(6910) = %d, want %d", c.class, got, c.want)
		}
	}
}

func TestEnabledOmitsSshByDefault(t *testing.T) {
	classes := Enabled(false)
	if len(classes) != 3 {
		t.Fatalf("Enabled(false) has %d classes, want 3", len(classes))
	}
	for _, c := range classes {
		if c.ForwardMode == WindowsMessageCopy {
			t.Fatalf("Enabled(false) unexpectedly included the SSH class")
		}
	}
}

func TestEnabledIncludesSshWhenRequested(t *testing.T) {
	classes := Enabled(true)
	if len(classes) != 4 {
		t.Fatalf("Enabled(true) has %d classes, want 4", len(classes))
	}
	if classes[3].Name != AgentSsh.Name {
		t.Fatalf("expected SSH class last, got %s", classes[3])
	}
}
