package chain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestParsePrivateKey(t *testing.T) {
	for _, material := range []string{testKeyHex, "0x" + testKeyHex, "  " + testKeyHex + " "} {
		key, err := ParsePrivateKey(material)
		if err != nil {
			t.Fatalf("ParsePrivateKey(%q): %v", material, err)
		}
		if key.Reveal() != testKeyHex {
			t.Fatalf("unexpected revealed key: %s", key.Reveal())
		}
	}

	for _, material := range []string{"", "0x", "zzzz", testKeyHex[:10], testKeyHex + "ab"} {
		if _, err := ParsePrivateKey(material); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("ParsePrivateKey(%q): expected ErrInvalidKey, got %v", material, err)
		}
	}
}

func TestPrivateKeyNeverRenders(t *testing.T) {
	key, err := ParsePrivateKey(testKeyHex)
	if err != nil {
		t.Fatal(err)
	}

	for name, rendered := range map[string]string{
		"String":   key.String(),
		"Sprintf v": fmt.Sprintf("%v", key),
		"Sprintf s": fmt.Sprintf("%s", key),
		"Sprintf #v": fmt.Sprintf("%#v", key),
	} {
		if strings.Contains(rendered, testKeyHex) {
			t.Fatalf("%s leaked key material: %s", name, rendered)
		}
	}

	data, err := json.Marshal(struct {
		Key PrivateKey `json:"key"`
	}{Key: key})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), testKeyHex) {
		t.Fatalf("JSON leaked key material: %s", data)
	}
	if !strings.Contains(string(data), "REDACTED") {
		t.Fatalf("expected redaction marker, got %s", data)
	}
}

func TestEtherToWei(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"0.5", "500000000000000000"},
		{"0.000000000000000001", "1"},
		{"2.25", "2250000000000000000"},
	}
	for _, tc := range cases {
		got, err := EtherToWei(tc.in)
		if err != nil {
			t.Fatalf("EtherToWei(%q): %v", tc.in, err)
		}
		want, _ := new(big.Int).SetString(tc.want, 10)
		if got.Cmp(want) != 0 {
			t.Fatalf("EtherToWei(%q)=%s, want %s", tc.in, got, want)
		}
	}

	for _, in := range []string{"", "abc", "0", "-1", "-0.5"} {
		if _, err := EtherToWei(in); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("EtherToWei(%q): expected ErrInvalidAmount, got %v", in, err)
		}
	}
	if _, err := EtherToWei("0.0000000000000000001"); !errors.Is(err, ErrSubWeiAmount) {
		t.Fatalf("expected ErrSubWeiAmount, got %v", err)
	}
}

func TestRejectedErrorMessage(t *testing.T) {
	err := error(&RejectedError{Reason: "insufficient funds"})
	if !strings.Contains(err.Error(), "insufficient funds") {
		t.Fatalf("reason missing from message: %s", err)
	}
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatal("errors.As failed for RejectedError")
	}
}
