package platform

import (
	"errors"
	"reflect"
	"testing"
)

func Test_fromGo(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		goarch  string
		want    Platform
		wantErr bool
	}{
		{name: "[VALID] linux/amd64", goos: "linux", goarch: "amd64", want: X8664Linux},
		{name: "[VALID] linux/arm64", goos: "linux", goarch: "arm64", want: Aarch64Linux},
		{name: "[VALID] darwin/arm64", goos: "darwin", goarch: "arm64", want: Aarch64Darwin},
		{name: "[VALID] linux/386", goos: "linux", goarch: "386", want: I686Linux},
		{name: "[INVALID] darwin/386", goos: "darwin", goarch: "386", wantErr: true},
		{name: "[INVALID] windows/amd64", goos: "windows", goarch: "amd64", wantErr: true},
		{name: "[INVALID] linux/riscv64", goos: "linux", goarch: "riscv64", wantErr: true},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			got, err := fromGo(tt.goos, tt.goarch)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("wanted error, but got %q", got)
				}
				if !errors.Is(err, ErrUnsupportedPlatform) {
					t.Errorf("expected ErrUnsupportedPlatform, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestPlatformHalves(t *testing.T) {
	if got := X8664Linux.Arch(); got != "x86_64" {
		t.Errorf("Arch() = %q", got)
	}
	if got := Aarch64Darwin.OS(); got != "darwin" {
		t.Errorf("OS() = %q", got)
	}
}

func TestParseList(t *testing.T) {
	got, err := ParseList([]string{"x86_64-linux", "aarch64-darwin", "x86_64-linux"})
	if err != nil {
		t.Fatal(err)
	}
	want := []Platform{X8664Linux, Aarch64Darwin}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, expected %v", got, want)
	}

	if _, err := ParseList([]string{"x86_64-windows"}); !errors.Is(err, ErrUnsupportedPlatform) {
		t.Errorf("expected ErrUnsupportedPlatform, got %v", err)
	}
}

func TestForEachIsRestartable(t *testing.T) {
	calls := 0
	seq := ForEach(Default, func(p Platform) string {
		calls++
		return "out-" + p.String()
	})

	if calls != 0 {
		t.Fatalf("ForEach must be lazy, fn called %d times before ranging", calls)
	}

	collect := func() map[Platform]string {
		m := map[Platform]string{}
		for p, v := range seq {
			m[p] = v
		}
		return m
	}

	first := collect()
	second := collect()

	if len(first) != len(Default) {
		t.Errorf("expected %d entries, got %d", len(Default), len(first))
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two iterations differ:\n\t%v\n\t%v", first, second)
	}
	if calls != 2*len(Default) {
		t.Errorf("expected fn to run once per platform per pass, got %d calls", calls)
	}
}

func TestForEachStopsEarly(t *testing.T) {
	calls := 0
	for range ForEach(Default, func(p Platform) int { calls++; return 0 }) {
		break
	}
	if calls != 1 {
		t.Errorf("expected 1 call after break, got %d", calls)
	}
}
