package main

import (
	"fmt"
	"os"

	"github.com/betbot/exchangett/internal/wallet"
	"github.com/betbot/exchangett/pkg/config"
	"github.com/betbot/exchangett/pkg/secretstore"
)

const (
	sourceEnvMnemonic = "env WALLET_MNEMONIC"
	sourceEnvKey      = "env WALLET_PRIVATE_KEY"
	sourceSecretStore = "secret store"
)

// loadSigner 按顺序查找钱包密钥：环境变量助记词、环境变量私钥、badger 密钥库。
// 都没有时返回 nil signer，不算错误。
func loadSigner(wc config.WalletConfig) (wallet.Signer, string, error) {
	if wc.Mnemonic != "" {
		s, err := wallet.NewMnemonicSigner(wc.Mnemonic, wc.DerivationPath)
		if err != nil {
			return nil, "", fmt.Errorf("WALLET_MNEMONIC: %w", err)
		}
		return s, sourceEnvMnemonic, nil
	}
	if wc.PrivateKey != "" {
		s, err := wallet.NewKeySigner(wc.PrivateKey)
		if err != nil {
			return nil, "", fmt.Errorf("WALLET_PRIVATE_KEY: %w", err)
		}
		return s, sourceEnvKey, nil
	}

	if wc.SecretDB == "" {
		return nil, "", nil
	}
	if _, err := os.Stat(wc.SecretDB); err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", err
	}
	key, err := secretstore.ParseKey(wc.SecretKey)
	if err != nil {
		return nil, "", fmt.Errorf("WALLET_SECRET_KEY: %w", err)
	}
	store, err := secretstore.Open(secretstore.OpenOptions{
		Path:          wc.SecretDB,
		EncryptionKey: key,
		ReadOnly:      true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("open secret store %s: %w", wc.SecretDB, err)
	}
	defer store.Close()

	mnemonic, ok, err := store.LoadMnemonic()
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", nil
	}
	s, err := wallet.NewMnemonicSigner(mnemonic, wc.DerivationPath)
	if err != nil {
		return nil, "", fmt.Errorf("stored mnemonic: %w", err)
	}
	return s, sourceSecretStore, nil
}
