package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMain_ConfigurationErrorExitsNonZero(t *testing.T) {
	saved := os.Args
	defer func() { os.Args = saved }()

	os.Args = []string{"lockhammer", "run", "-a", "-1", "--no-pin", "--no-realtime"}
	assert.Equal(t, 1, Main())
}
