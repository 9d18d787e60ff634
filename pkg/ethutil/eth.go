package ethutil

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrMismatchedAddress = errors.New("mismatched address")

// CallMessage is the text a wallet signs to authorize an operation.
func CallMessage(method string, instanceID int64, nonce uint64, payload []byte) []byte {
	return []byte(fmt.Sprintf("%s:%d:%d:%s", method, instanceID, nonce, payload))
}

// Sign produces a personal_sign signature of message, with V in 27/28 form.
func Sign(key *ecdsa.PrivateKey, message []byte) (string, error) {
	signature, err := crypto.Sign(accounts.TextHash(message), key)
	if err != nil {
		return "", err
	}

	signature[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(signature), nil
}

// Recover returns the address which produced a personal_sign signature.
func Recover(message []byte, signatureHex string) (common.Address, error) {
	signature, err := hexutil.Decode(signatureHex)
	if err != nil {
		return common.Address{}, err
	}

	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(signature))
	}

	if signature[crypto.RecoveryIDOffset] == 27 || signature[crypto.RecoveryIDOffset] == 28 {
		signature[crypto.RecoveryIDOffset] -= 27 // Transform yellow paper V from 27/28 to 0/1
	}

	recovered, err := crypto.SigToPub(accounts.TextHash(message), signature)
	if err != nil {
		return common.Address{}, err
	}

	return crypto.PubkeyToAddress(*recovered), nil
}

// Verify checks that signatureHex over message was produced by address.
func Verify(message []byte, signatureHex string, address common.Address) error {
	recovered, err := Recover(message, signatureHex)
	if err != nil {
		return err
	}

	if recovered != address {
		return ErrMismatchedAddress
	}

	return nil
}
