package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/bsm/romfs"
	"github.com/bsm/romfs/internal/walk"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] <source_dir|-> <output>",
		Short: "Archive a directory as a rom file",
		Long: `Archive the contents of source_dir as a rom file.

If source_dir is '-', a single file is read from stdin and the artifact is
written to stdout, using output as the stored path.

The passphrase may also be given as MKROM_PASSPHRASE.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringP("var", "c", "", "format as C source declaring the constant array `var_name`")
	f.BoolP("static", "s", false, "declare the generated constants static")
	f.BoolP("include-passphrase", "p", false, "declare the passphrase as <var_name>_passphrase")
	f.StringP("passphrase", "e", "", "encrypt with `passphrase`")
	f.StringP("strip-prefix", "x", "", "strip `prefix` from stored paths")
	f.Bool("no-compress", false, "store the record stream uncompressed")
	f.Int("level", 0, "compression level, 1 (fastest) to 9 (best)")
	f.Bool("hardened", false, "seal with age scrypt instead of the fixed-IV cipher")
	f.Int("work-factor", romfs.DefaultScryptWorkFactor, "scrypt work factor for hardened artifacts")
	f.String("format", "", "output format: binary, c or go (default binary, or c with --var)")
	f.String("package", "main", "package clause for Go output")
	f.Int("line-width", 0, "wrap literal source lines at `width` columns")

	for key, name := range map[string]string{
		"build.var_name":           "var",
		"build.static":             "static",
		"build.include_passphrase": "include-passphrase",
		"build.passphrase":         "passphrase",
		"build.strip_prefix":       "strip-prefix",
		"build.no_compress":        "no-compress",
		"build.level":              "level",
		"build.hardened":           "hardened",
		"build.work_factor":        "work-factor",
		"build.format":             "format",
		"build.package":            "package",
		"build.line_width":         "line-width",
	} {
		_ = a.v.BindPFlag(key, f.Lookup(name))
	}
	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, src, out string) error {
	o, err := a.cfg.Build.Options(a.log)
	if err != nil {
		return err
	}

	if src == "-" {
		a.log.Debug("archiving stdin", zap.String("path", out))

		b := romfs.NewBuilder(cmd.OutOrStdout(), o)
		if err := b.AppendFrom(out, cmd.InOrStdin()); err != nil {
			return err
		}
		return b.Close()
	}

	paths, err := walk.Files(os.DirFS(src), src)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	b := romfs.NewBuilder(&buf, o)
	for _, path := range paths {
		if err := appendFile(b, path); err != nil {
			return err
		}
	}
	if err := b.Close(); err != nil {
		return err
	}
	return writeFileAtomic(out, buf.Bytes())
}

func appendFile(b *romfs.Builder, path string) error {
	f, err := os.Open(filepath.FromSlash(path))
	if err != nil {
		return err
	}
	defer f.Close()

	return b.AppendFrom(path, f)
}

// writeFileAtomic writes data to a temp file and renames it to target, so
// a failed build never leaves a partial artifact behind.
func writeFileAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".mkrom-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
