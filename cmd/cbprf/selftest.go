package main

import (
	"crypto/subtle"
	"errors"
	"fmt"

	hex "github.com/tmthrgd/go-hex"

	"github.com/coinbase/cb-prf-go/pkg/prf/logging"
	"github.com/coinbase/cb-prf-go/pkg/prf/tripledes"
)

type knownAnswer struct {
	name  string
	key   string
	plain string
	want  string
}

// knownAnswers are the NIST SP 800-67 sample blocks plus the all-equal-key
// case, which must reduce to single DES.
var knownAnswers = []knownAnswer{
	{
		name:  "sp800-67/1",
		key:   "0123456789abcdef23456789abcdef01456789abcdef0123",
		plain: "5468652071756663",
		want:  "a826fd8ce53b855f",
	},
	{
		name:  "sp800-67/2",
		key:   "0123456789abcdef23456789abcdef01456789abcdef0123",
		plain: "6b2062726f776e20",
		want:  "cce21c8112256fe6",
	},
	{
		name:  "sp800-67/3",
		key:   "0123456789abcdef23456789abcdef01456789abcdef0123",
		plain: "666f78206a756d70",
		want:  "68d5c05dd9b6b900",
	},
	{
		name:  "single-des",
		key:   "133457799bbcdff1133457799bbcdff1133457799bbcdff1",
		plain: "0123456789abcdef",
		want:  "85e813540f0ab405",
	},
}

func (v knownAnswer) check(log logging.Logger) error {
	key, err := hex.DecodeString(v.key)
	if err != nil {
		return err
	}
	plain, err := hex.DecodeString(v.plain)
	if err != nil {
		return err
	}
	want, err := hex.DecodeString(v.want)
	if err != nil {
		return err
	}

	engine, err := tripledes.NewWithConfig(key, tripledes.Config{Logger: log})
	if err != nil {
		return err
	}
	defer engine.Close()

	got, err := engine.Compute(plain)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return errors.New("compute mismatch")
	}
	back, err := engine.Invert(got)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(back, plain) != 1 {
		return fmt.Errorf("invert mismatch")
	}
	return nil
}
