package ethutil

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	key, err := crypto.HexToECDSA("7886876e514713dcdc516d1d5a4bde14db8027ae67707303a14d09ba7c409ad4")
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	message := CallMessage("join", 12, 0, []byte(`{}`))
	require.Equal(t, "join:12:0:{}", string(message))

	signature, err := Sign(key, message)
	require.NoError(t, err)

	recovered, err := Recover(message, signature)
	require.NoError(t, err)
	require.Equal(t, address, recovered)
	require.NoError(t, Verify(message, signature, address))

	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	require.ErrorIs(t, Verify(message, signature, crypto.PubkeyToAddress(other.PublicKey)), ErrMismatchedAddress)

	// The signature does not cover another nonce.
	require.ErrorIs(t, Verify(CallMessage("join", 12, 1, []byte(`{}`)), signature, address), ErrMismatchedAddress)
}

func TestRecover_Invalid(t *testing.T) {
	_, err := Recover([]byte("x"), "not hex")
	require.Error(t, err)

	_, err = Recover([]byte("x"), "0x1234")
	require.Error(t, err)
}
