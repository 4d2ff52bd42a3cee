package inputs

import (
	"errors"
	"reflect"
	"testing"
)

const testRev = "41d292bfc37309790f70f4c120b79280ce40af16"

func TestParseLocator(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		want    Locator
		wantErr bool
	}{
		{
			name:    "[VALID] github without ref",
			locator: "github:numtide/flake-utils",
			want:    Locator{Kind: GitHubKind, Owner: "numtide", Repo: "flake-utils"},
		},
		{
			name:    "[VALID] github with branch",
			locator: "github:NixOS/nixpkgs/nixpkgs-unstable",
			want:    Locator{Kind: GitHubKind, Owner: "NixOS", Repo: "nixpkgs", Ref: "nixpkgs-unstable"},
		},
		{
			name:    "[VALID] github pinned in path",
			locator: "github:nix-community/naersk/" + testRev,
			want:    Locator{Kind: GitHubKind, Owner: "nix-community", Repo: "naersk", Rev: testRev},
		},
		{
			name:    "[VALID] github pinned by query",
			locator: "github:nix-community/naersk/master?rev=" + testRev,
			want:    Locator{Kind: GitHubKind, Owner: "nix-community", Repo: "naersk", Ref: "master", Rev: testRev},
		},
		{
			name:    "[VALID] git over https with ref",
			locator: "git+https://example.com/org/repo.git?ref=main",
			want:    Locator{Kind: GitKind, URL: "https://example.com/org/repo.git", Ref: "main"},
		},
		{
			name:    "[VALID] git over file",
			locator: "git+file:///srv/repo",
			want:    Locator{Kind: GitKind, URL: "file:///srv/repo"},
		},
		{
			name:    "[INVALID] unknown scheme",
			locator: "path:./foo",
			wantErr: true,
		},
		{
			name:    "[INVALID] github without repo",
			locator: "github:NixOS",
			wantErr: true,
		},
		{
			name:    "[INVALID] github with too many segments",
			locator: "github:NixOS/nixpkgs/a/b",
			wantErr: true,
		},
		{
			name:    "[INVALID] short rev",
			locator: "github:NixOS/nixpkgs?rev=abc123",
			wantErr: true,
		},
		{
			name:    "[INVALID] git with ftp scheme",
			locator: "git+ftp://example.com/repo",
			wantErr: true,
		},
		{
			name:    "[INVALID] git without host",
			locator: "git+https:///repo",
			wantErr: true,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocator(tt.locator)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("wanted error, but got %+v", got)
				}
				if !errors.Is(err, ErrInvalidLocator) {
					t.Errorf("expected ErrInvalidLocator, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Assertion Failed | \n\tgot: %v\n\texpected: nil", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Assertion Failed \n\tgot: %+v\n\texpected: %+v", got, tt.want)
			}
		})
	}
}

func TestLocatorString(t *testing.T) {
	for _, s := range []string{
		"github:numtide/flake-utils",
		"github:NixOS/nixpkgs/nixpkgs-unstable",
		"git+https://example.com/org/repo.git?ref=main",
	} {
		loc, err := ParseLocator(s)
		if err != nil {
			t.Fatal(err)
		}
		if got := loc.String(); got != s {
			t.Errorf("String() = %q, expected %q", got, s)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate([]Input{{Name: "a", Locator: "github:o/r"}, {Name: "a", Locator: "github:o/s"}}); err == nil {
		t.Errorf("expected duplicate name error")
	}
	if err := Validate([]Input{{Name: "", Locator: "github:o/r"}}); err == nil {
		t.Errorf("expected empty name error")
	}
	if err := Validate([]Input{{Name: "a", Locator: "nope"}}); !errors.Is(err, ErrInvalidLocator) {
		t.Errorf("expected ErrInvalidLocator, got %v", err)
	}
}
