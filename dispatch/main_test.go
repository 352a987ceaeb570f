package dispatch

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	var code int
	Run(func() { code = m.Run() })
	os.Exit(code)
}
