package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/betbot/exchangett/internal/wallet"
	"github.com/betbot/exchangett/pkg/config"
	"github.com/betbot/exchangett/pkg/secretstore"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	var (
		dbPath    = flag.String("badger", getenv("EXCHANGETT_SECRET_DB", config.DefaultSecretDB), "badger secrets db path")
		secretKey = flag.String("secret-key", getenv("WALLET_SECRET_KEY", ""), "badger encryption key (32 bytes base64/hex)")
		path      = flag.String("path", config.DefaultDerivationPath, "derivation path used to show the account")
		envFile   = flag.String("from-env", "", "read WALLET_MNEMONIC from this .env file instead of stdin")
		force     = flag.Bool("force", false, "overwrite a mnemonic that is already stored")
	)
	flag.Parse()

	keyBytes, err := secretstore.ParseKey(*secretKey)
	if err != nil {
		fatal(err)
	}
	if keyBytes == nil {
		fatal(errors.New("secret key is required: set WALLET_SECRET_KEY or pass -secret-key"))
	}

	mn, err := readMnemonic(*envFile)
	if err != nil {
		fatal(err)
	}
	signer, err := wallet.NewMnemonicSigner(mn, *path)
	if err != nil {
		fatal(err)
	}

	ss, err := secretstore.Open(secretstore.OpenOptions{Path: *dbPath, EncryptionKey: keyBytes})
	if err != nil {
		fatal(err)
	}
	defer ss.Close()

	if _, ok, err := ss.LoadMnemonic(); err != nil {
		fatal(err)
	} else if ok && !*force {
		fatal(fmt.Errorf("a mnemonic is already stored in %s (use -force to overwrite)", *dbPath))
	}
	if err := ss.SaveMnemonic(mn); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "已写入 %s：账户 %s（%s）\n", *dbPath, signer.Address().Hex(), *path)
}

func readMnemonic(envFile string) (string, error) {
	if envFile != "" {
		kv, err := godotenv.Read(envFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", envFile, err)
		}
		mn := strings.TrimSpace(kv["WALLET_MNEMONIC"])
		if mn == "" {
			return "", fmt.Errorf("%s has no WALLET_MNEMONIC", envFile)
		}
		return mn, nil
	}

	fmt.Fprintln(os.Stderr, "请输入助记词（12/15/18/21/24 个单词），输入完成后回车：")
	mn := strings.TrimSpace(readLine())
	if mn == "" {
		return "", errors.New("mnemonic is empty")
	}
	return mn, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func readLine() string {
	br := bufio.NewReader(os.Stdin)
	s, _ := br.ReadString('\n')
	return strings.TrimSpace(s)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
