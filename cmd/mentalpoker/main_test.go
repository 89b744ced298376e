package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/elgamal"
)

func TestKeygen(t *testing.T) {
	c := qt.New(t)
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"keygen", "--log_level", "none", "--key_bits", "64"})
	c.Assert(cmd.Execute(), qt.IsNil)

	var keys keyPairJSON
	c.Assert(json.Unmarshal(out.Bytes(), &keys), qt.IsNil)
	c.Assert(keys.Curve, qt.Equals, curve.NameBandersnatch)
	sk, ok := new(big.Int).SetString(keys.SK, 10)
	c.Assert(ok, qt.IsTrue)
	c.Assert(sk.BitLen() <= 64, qt.IsTrue)

	cv, err := curve.New(curve.Bandersnatch())
	c.Assert(err, qt.IsNil)
	kp, err := elgamal.NewKeyPair(cv, sk)
	c.Assert(err, qt.IsNil)
	x, y := cv.AffineBig(kp.PK)
	c.Assert(keys.PK, qt.Equals, [2]string{x.String(), y.String()})
}

func TestInvalidSettings(t *testing.T) {
	c := qt.New(t)
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"keygen", "--log_level", "none", "--curve", "secp256k1"})
	c.Assert(cmd.Execute(), qt.IsNotNil)

	cmd = newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"play", "--log_level", "none", "--deck_size", "4", "--deal", "5"})
	c.Assert(cmd.Execute(), qt.IsNotNil)
}
