package devflake

import (
	"testing"
)

func Test_expandEnv(t *testing.T) {
	scope := envScope{
		PackageRef: func(attr string) string { return "index." + attr },
		System:     "x86_64-linux",
		Source:     "/work/app",
	}

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{
			name:  "[VALID] plain value",
			value: "debug",
			want:  "debug",
		},
		{
			name:  "[VALID] package reference",
			value: "${pkgs.rustPlatform.rustLibSrc}",
			want:  "index.rustPlatform.rustLibSrc",
		},
		{
			name:  "[VALID] system and src",
			value: "${src}/target/${system}",
			want:  "/work/app/target/x86_64-linux",
		},
		{
			name:  "[VALID] unbraced reference",
			value: "$system",
			want:  "x86_64-linux",
		},
		{
			name:  "[VALID] escaped dollar",
			value: "$${HOME}/.cargo",
			want:  "${HOME}/.cargo",
		},
		{
			name:  "[VALID] placeholder-looking text stays literal",
			value: "__DOLLAR_ESCAPE__",
			want:  "__DOLLAR_ESCAPE__",
		},
		{
			name:  "[VALID] dollar escape next to a reference",
			value: "$$${system}",
			want:  "$x86_64-linux",
		},
		{
			name:    "[INVALID] unclosed reference",
			value:   "${pkgs.x",
			wantErr: true,
		},
		{
			name:    "[INVALID] empty reference",
			value:   "a${}b",
			wantErr: true,
		},
		{
			name:    "[INVALID] trailing dollar",
			value:   "cost$",
			wantErr: true,
		},
		{
			name:    "[INVALID] stray dollar",
			value:   "$5",
			wantErr: true,
		},
		{
			name:    "[INVALID] malformed attribute path",
			value:   "${pkgs.a..b}",
			wantErr: true,
		},
		{
			name:    "[INVALID] host variable",
			value:   "${HOME}/.cargo",
			wantErr: true,
		},
		{
			name:    "[INVALID] empty package attribute",
			value:   "${pkgs.}",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnv(tt.value, scope)
			if tt.wantErr {
				if err == nil {
					t.Errorf("wanted error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, expected %q", got, tt.want)
			}
		})
	}
}

func Test_nixEnvExpr(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{value: "${pkgs.rustPlatform.rustLibSrc}", want: `"${pkgs.rustPlatform.rustLibSrc}"`},
		{value: "$system-x", want: `"${system}-x"`},
		{value: "$${HOME}", want: `"\${HOME}"`},
		{value: `say "hi"`, want: `"say \"hi\""`},
		{value: `C:\path`, want: `"C:\\path"`},
		{value: "cost: 5$$", want: `"cost: 5\$"`},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := nixEnvExpr(tt.value)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %s, expected %s", got, tt.want)
			}
		})
	}

	for _, bad := range []string{"${pkgs.x", "a${}b", "$"} {
		if _, err := nixEnvExpr(bad); err == nil {
			t.Errorf("nixEnvExpr(%q) should fail", bad)
		}
	}
}

func Test_isEnvName(t *testing.T) {
	for name, want := range map[string]bool{
		"RUST_SRC_PATH": true,
		"_x1":           true,
		"1X":            false,
		"A-B":           false,
		"":              false,
	} {
		if got := isEnvName(name); got != want {
			t.Errorf("isEnvName(%q) = %v, expected %v", name, got, want)
		}
	}
}
