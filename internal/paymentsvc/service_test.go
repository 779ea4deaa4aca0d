package paymentsvc

import "testing"

func TestMaskCardKeepsLastFourDigits(t *testing.T) {
	got := maskCard("4111111111111234")
	want := "************1234"
	if got != want {
		t.Fatalf("maskCard() = %q, want %q", got, want)
	}
}

func TestMaskCardShortNumberUnchanged(t *testing.T) {
	if got := maskCard("9999"); got != "9999" {
		t.Fatalf("maskCard(sentinel) = %q, want unchanged", got)
	}
}

func TestSentinelCardIs9999(t *testing.T) {
	if sentinelCard != "9999" {
		t.Fatalf("sentinel card constant drifted: %q", sentinelCard)
	}
}
