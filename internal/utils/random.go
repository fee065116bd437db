package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var randomAdjectives = []string{
	"brave",
	"bright",
	"calm",
	"clever",
	"eager",
	"gentle",
	"keen",
	"lively",
	"nimble",
	"steady",
	"swift",
	"witty",
}

var randomNouns = []string{
	"canvas",
	"falcon",
	"harbor",
	"lantern",
	"meadow",
	"otter",
	"quill",
	"spruce",
	"tide",
	"willow",
}

// RandomName returns an adjective-noun name used for unnamed workspaces.
func RandomName() string {
	return fmt.Sprintf("%s-%s", randomWord(randomAdjectives), randomWord(randomNouns))
}

func randomWord(list []string) string {
	if len(list) == 0 {
		return ""
	}
	limit := big.NewInt(int64(len(list)))
	idx, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return list[0]
	}
	return list[int(idx.Int64())]
}
