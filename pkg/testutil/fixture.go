package testutil

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	OperatorKey = mustKey("b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	AliceKey    = mustKey("8f2a55949038a9610f50fb23b5883af3b4ecb3c3bb792cbcefbd1542c692be63")
	BobKey      = mustKey("c87509a1c067bbde78beb793e6fa76530b6382a4c0241e5e4a9ec0a0f44dc0d3")
	CarolKey    = mustKey("ae6ae8e5ccbfb04590405997ee2d52d2b330726137b875053c36d94e974d162f")
	DaveKey     = mustKey("0dbbe8e4ae425a6d2687f1a7e3ba17bc98c673636790f1b8ad91193c05875ef1")

	Operator = crypto.PubkeyToAddress(OperatorKey.PublicKey)
	Alice    = crypto.PubkeyToAddress(AliceKey.PublicKey)
	Bob      = crypto.PubkeyToAddress(BobKey.PublicKey)
	Carol    = crypto.PubkeyToAddress(CarolKey.PublicKey)
	Dave     = crypto.PubkeyToAddress(DaveKey.PublicKey)

	FeeSink = common.HexToAddress("0x00000000000000000000000000000000000000fe")
)

func mustKey(hex string) *ecdsa.PrivateKey {
	key, err := crypto.HexToECDSA(hex)
	if err != nil {
		panic(err)
	}

	return key
}
