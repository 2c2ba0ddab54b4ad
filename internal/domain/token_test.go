package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestValidateFeeSplit(t *testing.T) {
	tests := []struct {
		name    string
		split   []FeeShare
		wantErr bool
	}{
		{"creator and platform", []FeeShare{{"a", 8000}, {"b", 2000}}, false},
		{"single recipient", []FeeShare{{"a", 10_000}}, false},
		{"empty", nil, true},
		{"sum too low", []FeeShare{{"a", 5000}, {"b", 4999}}, true},
		{"sum too high", []FeeShare{{"a", 8000}, {"b", 2001}}, true},
		{"zero share", []FeeShare{{"a", 10_000}, {"b", 0}}, true},
		{"negative share", []FeeShare{{"a", 10_001}, {"b", -1}}, true},
		{"missing wallet", []FeeShare{{"", 10_000}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFeeSplit(tt.split)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFeeSplit() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewFeeSplit_Copies(t *testing.T) {
	rows := []FeeShare{{"a", 8000}, {"b", 2000}}
	split, err := NewFeeSplit(rows...)
	if err != nil {
		t.Fatalf("NewFeeSplit: %v", err)
	}
	rows[0].Wallet = "mutated"
	if split[0].Wallet != "a" {
		t.Error("NewFeeSplit should copy its input")
	}
}

func TestToken_IsMinted(t *testing.T) {
	pending := &Token{Status: TokenStatusPending}
	if pending.IsMinted() {
		t.Error("pending token without proof should not be minted")
	}

	withProof := &Token{Status: TokenStatusPending, Proofs: Proofs{MintTx: "sig"}}
	if !withProof.IsMinted() {
		t.Error("token with mint proof should count as minted")
	}

	minted := &Token{Status: TokenStatusMinted}
	if !minted.IsMinted() {
		t.Error("minted token should be minted")
	}
}

func TestToken_ActivityTime(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	launched := created.Add(time.Hour)

	tok := &Token{CreatedAt: created}
	if !tok.ActivityTime().Equal(created) {
		t.Errorf("expected created_at fallback, got %v", tok.ActivityTime())
	}

	tok.LaunchedAt = launched
	if !tok.ActivityTime().Equal(launched) {
		t.Errorf("expected launched_at, got %v", tok.ActivityTime())
	}
}

func TestToken_CloneIsDeep(t *testing.T) {
	tok := &Token{Mint: "m", FeeSplit: []FeeShare{{"a", 10_000}}}
	c := tok.Clone()
	c.FeeSplit[0].Wallet = "b"
	if tok.FeeSplit[0].Wallet != "a" {
		t.Error("Clone should not share the fee split slice")
	}
}

func TestPendingPost_Expired(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &PendingPost{CreatedAt: created}

	if p.Expired(created.Add(PendingPostTTL)) {
		t.Error("entry exactly at TTL should still be usable")
	}
	if !p.Expired(created.Add(PendingPostTTL + time.Millisecond)) {
		t.Error("entry past TTL should be expired")
	}
}

func TestToken_ZeroLaunchedAtIsOmitted(t *testing.T) {
	data, err := json.Marshal(&Token{Mint: "m1", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "launched_at") {
		t.Errorf("zero launched_at should be omitted: %s", data)
	}

	launched := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	data, err = json.Marshal(&Token{Mint: "m1", LaunchedAt: launched})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Token
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.LaunchedAt.Equal(launched) {
		t.Errorf("launched_at = %v, want %v", back.LaunchedAt, launched)
	}
}
