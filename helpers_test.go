package main

import (
	"bytes"
	"flag"
	"os"
	"testing"
)

var updateGolden = flag.Bool("update", false, "update golden files")

func compareWithGolden(t *testing.T, got []byte, goldenPath string) {
	t.Helper()

	if *updateGolden {
		if err := os.WriteFile(goldenPath, got, 0644); err != nil {
			t.Fatal(err)
		}
		return
	}

	want, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("output differs from %s\ngot:\n%s\nwant:\n%s", goldenPath, got, want)
	}
}
