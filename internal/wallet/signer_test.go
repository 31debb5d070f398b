package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	testMnemonic = "test test test test test test test test test test test junk"
	// m/44'/60'/0'/0/0 of testMnemonic
	testAddress    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

func TestNewMnemonicSigner_DerivesFirstAccount(t *testing.T) {
	s, err := NewMnemonicSigner("  "+testMnemonic+"\n", "")
	if err != nil {
		t.Fatalf("NewMnemonicSigner() error: %v", err)
	}
	if got := s.Address().Hex(); got != testAddress {
		t.Fatalf("address = %s, want %s", got, testAddress)
	}

	second, err := NewMnemonicSigner(testMnemonic, "m/44'/60'/0'/0/1")
	if err != nil {
		t.Fatalf("derive index 1: %v", err)
	}
	if second.Address() == s.Address() {
		t.Fatalf("index 1 should differ from index 0")
	}
}

func TestNewMnemonicSigner_Invalid(t *testing.T) {
	if _, err := NewMnemonicSigner("", ""); err == nil {
		t.Fatalf("expected error for empty mnemonic")
	}
	if _, err := NewMnemonicSigner("not a real mnemonic at all", ""); err == nil {
		t.Fatalf("expected error for invalid mnemonic")
	}
	if _, err := NewMnemonicSigner(testMnemonic, "m/bogus"); err == nil {
		t.Fatalf("expected error for invalid path")
	}
}

func TestNewKeySigner_MatchesMnemonic(t *testing.T) {
	s, err := NewKeySigner("0x" + testPrivateKey)
	if err != nil {
		t.Fatalf("NewKeySigner() error: %v", err)
	}
	if got := s.Address().Hex(); got != testAddress {
		t.Fatalf("address = %s, want %s", got, testAddress)
	}
	if _, err := NewKeySigner("zz"); err == nil {
		t.Fatalf("expected error for bad key")
	}
}

func TestSigners_SignTxRecoversSender(t *testing.T) {
	hd, err := NewMnemonicSigner(testMnemonic, DefaultDerivationPath)
	if err != nil {
		t.Fatalf("mnemonic signer: %v", err)
	}
	key, err := NewKeySigner(testPrivateKey)
	if err != nil {
		t.Fatalf("key signer: %v", err)
	}

	chainID := big.NewInt(1337)
	for name, s := range map[string]Signer{"hd": hd, "key": key} {
		t.Run(name, func(t *testing.T) {
			tx := types.NewTx(&types.LegacyTx{
				Nonce:    0,
				To:       &common.Address{},
				Value:    big.NewInt(1),
				Gas:      21000,
				GasPrice: big.NewInt(1),
			})
			signed, err := s.SignTx(tx, chainID)
			if err != nil {
				t.Fatalf("SignTx() error: %v", err)
			}
			from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
			if err != nil {
				t.Fatalf("Sender() error: %v", err)
			}
			if from != s.Address() {
				t.Fatalf("sender = %s, want %s", from.Hex(), s.Address().Hex())
			}
		})
	}
}

func TestFormatEther(t *testing.T) {
	oneEth, _ := new(big.Int).SetString("1000000000000000000", 10)
	cases := []struct {
		in   *big.Int
		want string
	}{
		{nil, "0"},
		{big.NewInt(0), "0"},
		{oneEth, "1"},
		{big.NewInt(500000000000000000), "0.5"},
		{big.NewInt(1), "0.000000000000000001"},
	}
	for _, tc := range cases {
		if got := FormatEther(tc.in); got != tc.want {
			t.Fatalf("FormatEther(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
