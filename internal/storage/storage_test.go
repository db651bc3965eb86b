package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := newStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return s
}

func TestSaveAndLoadAccount(t *testing.T) {
	s := newTestStorage(t)

	account := &StoredAccount{
		AccessToken:       "EAAG-long-lived-token",
		BusinessAccountID: "17841400000000000",
	}
	if err := s.SaveAccount("brand", account); err != nil {
		t.Fatalf("failed to save account: %v", err)
	}

	loaded, err := s.LoadAccount("brand")
	if err != nil {
		t.Fatalf("failed to load account: %v", err)
	}
	if loaded.AccessToken != account.AccessToken {
		t.Errorf("unexpected token %q", loaded.AccessToken)
	}
	if loaded.BusinessAccountID != account.BusinessAccountID {
		t.Errorf("unexpected business account id %q", loaded.BusinessAccountID)
	}
	if loaded.AddedAt.IsZero() {
		t.Error("expected AddedAt to be set on save")
	}
}

func TestFirstAccountBecomesDefault(t *testing.T) {
	s := newTestStorage(t)

	if err := s.SaveAccount("first", &StoredAccount{AccessToken: "a", BusinessAccountID: "1"}); err != nil {
		t.Fatalf("failed to save account: %v", err)
	}
	if err := s.SaveAccount("second", &StoredAccount{AccessToken: "b", BusinessAccountID: "2"}); err != nil {
		t.Fatalf("failed to save account: %v", err)
	}

	loaded, err := s.LoadAccount("")
	if err != nil {
		t.Fatalf("failed to load default account: %v", err)
	}
	if loaded.AccessToken != "a" {
		t.Errorf("expected the first account as default, got token %q", loaded.AccessToken)
	}

	if err := s.SetDefault("second"); err != nil {
		t.Fatalf("failed to set default: %v", err)
	}
	loaded, err = s.LoadAccount("")
	if err != nil {
		t.Fatalf("failed to load default account: %v", err)
	}
	if loaded.AccessToken != "b" {
		t.Errorf("expected the second account after SetDefault, got token %q", loaded.AccessToken)
	}
}

func TestLoadAccountWithoutAnySaved(t *testing.T) {
	s := newTestStorage(t)

	loaded, err := s.LoadAccount("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil account, got %+v", loaded)
	}

	if _, err := s.LoadAccount("ghost"); err == nil {
		t.Error("expected an error for an unknown account name")
	}
}

func TestDeleteAccountPromotesNextDefault(t *testing.T) {
	s := newTestStorage(t)

	for _, name := range []string{"alpha", "beta"} {
		if err := s.SaveAccount(name, &StoredAccount{AccessToken: name, BusinessAccountID: "1"}); err != nil {
			t.Fatalf("failed to save account: %v", err)
		}
	}

	if err := s.DeleteAccount("alpha"); err != nil {
		t.Fatalf("failed to delete account: %v", err)
	}

	names, def, err := s.ListAccounts()
	if err != nil {
		t.Fatalf("failed to list accounts: %v", err)
	}
	if len(names) != 1 || names[0] != "beta" {
		t.Errorf("unexpected accounts %v", names)
	}
	if def != "beta" {
		t.Errorf("expected beta promoted to default, got %q", def)
	}

	if err := s.DeleteAccount("ghost"); err == nil {
		t.Error("expected an error deleting an unknown account")
	}
}

func TestListAccountsSorted(t *testing.T) {
	s := newTestStorage(t)

	for _, name := range []string{"zulu", "alpha", "mike"} {
		if err := s.SaveAccount(name, &StoredAccount{AccessToken: "t", BusinessAccountID: "1"}); err != nil {
			t.Fatalf("failed to save account: %v", err)
		}
	}

	names, def, err := s.ListAccounts()
	if err != nil {
		t.Fatalf("failed to list accounts: %v", err)
	}
	want := []string{"alpha", "mike", "zulu"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected sorted names %v, got %v", want, names)
		}
	}
	if def != "zulu" {
		t.Errorf("expected the first saved account as default, got %q", def)
	}
}

func TestTokenNeverStoredInPlaintext(t *testing.T) {
	s := newTestStorage(t)

	token := "EAAG-very-secret-token"
	if err := s.SaveAccount("brand", &StoredAccount{AccessToken: token, BusinessAccountID: "1"}); err != nil {
		t.Fatalf("failed to save account: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(s.GetBasePath(), AccountsFile))
	if err != nil {
		t.Fatalf("failed to read accounts file: %v", err)
	}
	if bytes.Contains(raw, []byte(token)) {
		t.Error("token found in plaintext on disk")
	}
}

func TestTamperedFileFailsToDecrypt(t *testing.T) {
	s := newTestStorage(t)

	if err := s.SaveAccount("brand", &StoredAccount{AccessToken: "t", BusinessAccountID: "1"}); err != nil {
		t.Fatalf("failed to save account: %v", err)
	}

	path := filepath.Join(s.GetBasePath(), AccountsFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read accounts file: %v", err)
	}
	raw[len(raw)-1] ^= 0xFF
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatalf("failed to write tampered file: %v", err)
	}

	if _, err := s.LoadAccount("brand"); err == nil {
		t.Error("expected decryption of a tampered file to fail")
	}
}

func TestHasAccounts(t *testing.T) {
	s := newTestStorage(t)

	if s.HasAccounts() {
		t.Error("expected no accounts in a fresh store")
	}
	if err := s.SaveAccount("brand", &StoredAccount{AccessToken: "t", BusinessAccountID: "1"}); err != nil {
		t.Fatalf("failed to save account: %v", err)
	}
	if !s.HasAccounts() {
		t.Error("expected HasAccounts after a save")
	}
}

func TestKeyIsReusedAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := newStorageAt(dir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	if err := first.SaveAccount("brand", &StoredAccount{AccessToken: "t", BusinessAccountID: "1"}); err != nil {
		t.Fatalf("failed to save account: %v", err)
	}

	second, err := newStorageAt(dir)
	if err != nil {
		t.Fatalf("failed to reopen storage: %v", err)
	}
	loaded, err := second.LoadAccount("brand")
	if err != nil {
		t.Fatalf("failed to load account with reopened storage: %v", err)
	}
	if loaded.AccessToken != "t" {
		t.Errorf("unexpected token %q", loaded.AccessToken)
	}
}
