package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

// ParseKeys decodes hex encoded secp256k1 private keys (with or without 0x).
func ParseKeys(hexKeys []string) ([]*ecdsa.PrivateKey, error) {
	keys := make([]*ecdsa.PrivateKey, 0, len(hexKeys))
	for i, h := range hexKeys {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(h), "0x"))
		if err != nil {
			return nil, fmt.Errorf("private key #%d: %w", i+1, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// LoadKeystore decrypts every key file found in a go-ethereum keystore
// directory with the given passphrase.
func LoadKeystore(dir, passphrase string) ([]*ecdsa.PrivateKey, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}

	var keys []*ecdsa.PrivateKey
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read key file %s: %w", e.Name(), err)
		}
		k, err := keystore.DecryptKey(data, passphrase)
		if err != nil {
			return nil, fmt.Errorf("decrypt key file %s: %w", e.Name(), err)
		}
		keys = append(keys, k.PrivateKey)
	}
	return keys, nil
}
