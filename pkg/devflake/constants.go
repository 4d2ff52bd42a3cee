package devflake

import (
	"github.com/nxtcoder17/devflake/pkg/inputs"
)

const (
	LockFileName  = "devflake.lock"
	StateDirName  = ".devflake"
	FlakeFileName = "flake.nix"

	// PackageIndexInput names the input every package and env reference resolves against
	PackageIndexInput = "nixpkgs"

	// BuilderInput names the input that turns the source tree into a package
	BuilderInput = "naersk"
)

// DescriptorFileNames are tried, in order, in each directory while searching upwards
var DescriptorFileNames = []string{
	"devflake.yml",
	"devflake.yaml",
	"devflake.toml",
}

var DefaultInputs = []inputs.Input{
	{Name: BuilderInput, Locator: "github:nix-community/naersk/master"},
	{Name: PackageIndexInput, Locator: "github:NixOS/nixpkgs/nixpkgs-unstable"},
	{Name: "utils", Locator: "github:numtide/flake-utils"},
}

var DefaultNativeDeps = []string{
	"gtk4",
	"cairo",
	"glib",
	"pkg-config",
	"poppler",
	"wrapGAppsHook",
}

var DefaultDevTools = []string{
	"cargo",
	"rustc",
	"rustfmt",
	"rust-analyzer",
	"pre-commit",
	"clippy",
	"cargo-outdated",
	"cargo-audit",
}

var DefaultEnv = map[string]string{
	"RUST_SRC_PATH": "${pkgs.rustPlatform.rustLibSrc}",
}
