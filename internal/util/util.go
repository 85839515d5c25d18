package util

import (
	"os"
	"strings"
)

func ExpandUser(p string) string {
	if strings.HasPrefix(p, "~") {
		return os.Getenv("HOME") + p[1:]
	}
	return p
}

func PathExists(p string) (bool, error) {
	_, err := os.Stat(p)
	return err == nil, err
}

type ObjectWriter[I any] interface {
	WriteObject(I)
	Close()
}
