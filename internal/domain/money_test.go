package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
)

func TestFloorInt(t *testing.T) {
	cases := map[string]string{
		"573.75":  "573",
		"-573.75": "-574",
		"0":       "0",
		"-0.01":   "-1",
		"99.999":  "99",
	}
	for in, want := range cases {
		if got := domain.FloorInt(dec(in)); !got.Equal(dec(want)) {
			t.Errorf("FloorInt(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestTruncate2(t *testing.T) {
	if got := domain.Truncate2(dec("540.999")); !got.Equal(dec("540.99")) {
		t.Errorf("Truncate2(540.999) = %s, want 540.99", got)
	}
	if got := domain.Truncate2(dec("-1.239")); !got.Equal(dec("-1.23")) {
		t.Errorf("Truncate2(-1.239) = %s, want -1.23", got)
	}
}

func TestNetOfWithdrawal(t *testing.T) {
	got := domain.NetOfWithdrawal(dec("1000"), dec("10"))
	if !got.Equal(dec("900")) {
		t.Errorf("NetOfWithdrawal(1000, 10) = %s, want 900", got)
	}
	if got := domain.PercentOf(dec("900"), dec("60")); !got.Equal(dec("540")) {
		t.Errorf("PercentOf(900, 60) = %s, want 540", got)
	}
}

func TestAmountJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		V domain.Amount `json:"v"`
	}{V: domain.NewAmount(dec("573.759"))})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"v":573.75}` {
		t.Errorf("json = %s, want {\"v\":573.75}", b)
	}

	var back struct {
		V domain.Amount `json:"v"`
	}
	if err := json.Unmarshal([]byte(`{"v":"600"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.V.Decimal().Equal(dec("600")) {
		t.Errorf("unmarshal = %s, want 600", back.V)
	}
}

func TestNormalizeNameAndPadPairNumber(t *testing.T) {
	if got := domain.NormalizeName("  Red   Fury "); got != "red fury" {
		t.Errorf("NormalizeName = %q, want %q", got, "red fury")
	}
	if got := domain.PadPairNumber(" 1 "); got != "01" {
		t.Errorf("PadPairNumber(1) = %q, want 01", got)
	}
	if got := domain.PadPairNumber("12"); got != "12" {
		t.Errorf("PadPairNumber(12) = %q, want 12", got)
	}
}
