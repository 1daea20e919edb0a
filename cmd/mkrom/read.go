package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/bsm/romfs"
	digest "github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// readArtifact reads an artifact file, '-' reads stdin.
func readArtifact(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

func addPassphraseFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("passphrase", "e", "", "decrypt with `passphrase` (or set MKROM_PASSPHRASE)")
}

// passphrase returns the passphrase flag value, falling back to the
// configured build passphrase.
func (a *app) passphrase(cmd *cobra.Command) romfs.Passphrase {
	if f := cmd.Flags().Lookup("passphrase"); f != nil && f.Changed {
		return romfs.NewPassphrase(f.Value.String())
	}
	if a.cfg.Build.HasPassphrase() {
		return romfs.NewPassphrase(a.cfg.Build.Passphrase)
	}
	return romfs.NoPassphrase
}

func (a *app) mount(cmd *cobra.Command, name string) (*romfs.FS, error) {
	artifact, err := readArtifact(cmd, name)
	if err != nil {
		return nil, err
	}

	fsys, err := romfs.Mount(artifact, a.passphrase(cmd))
	if err != nil {
		return nil, fmt.Errorf("mounting %s: %w", name, err)
	}

	a.log.Debug("artifact mounted",
		zap.String("file", name),
		zap.Int("files", fsys.Len()),
		zap.Int("raw_size", fsys.Size()),
	)
	return fsys, nil
}

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [flags] <artifact|->",
		Short: "List the files of a rom file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, err := a.mount(cmd, args[0])
			if err != nil {
				return err
			}
			defer fsys.Release()

			w := cmd.OutOrStdout()
			it := fsys.Iterator()
			for it.Next() {
				if _, err := fmt.Fprintf(w, "%10d  %s\n", len(it.Content()), it.Path()); err != nil {
					return err
				}
			}
			return it.Err()
		},
	}
	addPassphraseFlag(cmd)
	return cmd
}

func (a *app) catCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat [flags] <artifact|-> <path>",
		Short: "Write the content of a stored file to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, err := a.mount(cmd, args[0])
			if err != nil {
				return err
			}
			defer fsys.Release()

			content, err := fsys.Lookup(args[1])
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}
	addPassphraseFlag(cmd)
	return cmd
}

func (a *app) inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [flags] <artifact|->",
		Short: "Describe a rom file",
		Long: `Print the container tag, sizes and digest of a rom file. Encrypted
rom files are only described in full when a passphrase is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			artifact, err := readArtifact(cmd, args[0])
			if err != nil {
				return err
			}
			tag, payload, err := romfs.Unwrap(artifact)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 1, ' ', 0)
			fmt.Fprintf(w, "tag:\t%s\n", tag)
			fmt.Fprintf(w, "size:\t%d\n", len(artifact))
			fmt.Fprintf(w, "payload:\t%d\n", len(payload))
			fmt.Fprintf(w, "digest:\t%s\n", digest.FromBytes(artifact))

			pass := a.passphrase(cmd)
			if tag.NeedsPassphrase() && !pass.IsSet() {
				fmt.Fprintf(w, "encrypted:\tyes\n")
				return w.Flush()
			}

			fsys, err := romfs.Mount(artifact, pass)
			if err != nil {
				return err
			}
			defer fsys.Release()

			fmt.Fprintf(w, "raw:\t%d\n", fsys.Size())
			fmt.Fprintf(w, "files:\t%d\n", fsys.Len())
			return w.Flush()
		},
	}
	addPassphraseFlag(cmd)
	return cmd
}
