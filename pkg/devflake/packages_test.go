package devflake

import (
	"errors"
	"reflect"
	"testing"
)

func Test_parsePackage(t *testing.T) {
	tests := []struct {
		name    string
		pkg     string
		want    *Package
		wantErr bool
	}{
		{
			name: "[VALID] simple package reference",
			pkg:  "gtk4",
			want: &Package{Name: "gtk4"},
		},
		{
			name: "[VALID] attribute path",
			pkg:  "rustPlatform.rustLibSrc",
			want: &Package{Name: "rustPlatform.rustLibSrc"},
		},
		{
			name: "[VALID] pinned nixpkgs package",
			pkg:  "nixpkgs/41d292bfc37309790f70f4c120b79280ce40af16#poppler",
			want: &Package{Name: "poppler", Commit: "41d292bfc37309790f70f4c120b79280ce40af16"},
		},
		{
			name:    "[INVALID] pinned nixpkgs package without #",
			pkg:     "nixpkgs/41d292bfc37309790f70f4c120b79280ce40af16/go",
			wantErr: true,
		},
		{
			name:    "[INVALID] short commit",
			pkg:     "nixpkgs/41d292b#go",
			wantErr: true,
		},
		{
			name:    "[INVALID] foreign index",
			pkg:     "github:foo/bar#go",
			wantErr: true,
		},
		{
			name:    "[INVALID] empty attribute",
			pkg:     "nixpkgs/41d292bfc37309790f70f4c120b79280ce40af16#",
			wantErr: true,
		},
		{
			name:    "[INVALID] empty",
			pkg:     "  ",
			wantErr: true,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			np, err := parsePackage(tt.pkg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("wanted error, but got no error")
				}
				if !errors.Is(err, ErrInvalidDescriptor) {
					t.Errorf("expected ErrInvalidDescriptor, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Assertion Failed | \n\tgot: %v\n\texpected: nil", err)
				return
			}

			if !reflect.DeepEqual(np, tt.want) {
				t.Errorf("Assertion Failed \n\tgot: %v\n\texpected: %v", np, tt.want)
			}

			if np.String() != tt.pkg {
				t.Errorf("String() = %q, expected %q", np.String(), tt.pkg)
			}
		})
	}
}
