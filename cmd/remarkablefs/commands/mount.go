package commands

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"

	"github.com/nick8325/remarkable-fs/internal/config"
	"github.com/nick8325/remarkable-fs/internal/docmodel"
	"github.com/nick8325/remarkable-fs/internal/fusefs"
	"github.com/nick8325/remarkable-fs/internal/hostctl"
	"github.com/nick8325/remarkable-fs/internal/templates"
	"github.com/nick8325/remarkable-fs/internal/transport"
)

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563eb")).Bold(true)

var mountCmd = &cobra.Command{
	Use:   "mount [mountpoint] [local-dir]",
	Short: "Mount the tablet's document library",
	Long: `Mount the tablet's document library at mountpoint. If local-dir is
given, it replaces the SSH/SFTP connection with a plain local directory of
.metadata/.content files, for offline inspection of a copied-down library.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runMount,
}

func init() {
	rootCmd.AddCommand(mountCmd)
}

func runMount(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mountpoint := cfg.Mount.DefaultPath
	if len(args) > 0 {
		mountpoint = args[0]
	}
	if mountpoint == "" {
		mountpoint, err = promptMountpoint()
		if err != nil {
			return err
		}
	}
	if mountpoint == "" {
		return fmt.Errorf("mountpoint required: remarkablefs mount /path/to/mount")
	}
	if err := os.MkdirAll(mountpoint, 0755); err != nil {
		return fmt.Errorf("failed to create mountpoint: %w", err)
	}

	var tr transport.Transport
	var renderer *hostctl.Session

	if len(args) > 1 {
		tr = transport.NewLocalDirTransport(args[1])
	} else {
		addr := cfg.SSH.Host + ":" + strconv.Itoa(cfg.SSH.Port)
		cc, err := sshClientConfig(&cfg.SSH)
		if err != nil {
			return fmt.Errorf("failed to build SSH config: %w", err)
		}
		tr = transport.NewSFTPTransport(addr, "", cc)

		renderer, err = hostctl.Open(addr, cc)
		if err != nil {
			return fmt.Errorf("failed to stop on-device renderer: %w", err)
		}
		defer renderer.Close()
	}

	cacheDir, err := os.MkdirTemp("", "remarkablefs-templates-*")
	if err != nil {
		return fmt.Errorf("failed to create template cache dir: %w", err)
	}
	defer os.RemoveAll(cacheDir)

	tc := templates.New(tr, cacheDir)
	tree := docmodel.NewTree(tr, tc)
	if err := tree.Load(); err != nil {
		return fmt.Errorf("failed to load document tree: %w", err)
	}

	opts := fusefs.Options{
		VolumeName: cfg.Mount.VolumeName,
		AllowOther: cfg.Mount.AllowOther,
		Debug:      debug,
	}
	server, err := fusefs.New(tree, opts).Mount(mountpoint)
	if err != nil {
		return fmt.Errorf("failed to mount: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nUnmounting...")
		server.Unmount()
	}()

	fmt.Printf("Mounted at %s. Press Ctrl+C to unmount.\n", mountpoint)
	server.Wait()

	if err := tr.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing transport: %v\n", err)
	}

	return nil
}

// promptMountpoint asks for a mountpoint interactively, only when stdin is
// a terminal; a non-interactive caller (a script, a systemd unit) gets a
// plain "mountpoint required" error instead of hanging on a read.
func promptMountpoint() (string, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return "", nil
	}
	fmt.Print(promptStyle.Render("Mountpoint: "))
	var path string
	if _, err := fmt.Scanln(&path); err != nil {
		return "", nil
	}
	return filepath.Clean(path), nil
}

// sshClientConfig builds the ssh.ClientConfig used both for the SFTP
// transport and the hostctl renderer-control session, so the two always
// authenticate identically.
func sshClientConfig(sc *config.SSHConfig) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if sc.IdentityFile != "" {
		key, err := os.ReadFile(sc.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("read identity file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse identity file: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if sc.KnownHostsFingerprint != "" {
		want := sc.KnownHostsFingerprint
		hostKeyCallback = func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			got := ssh.FingerprintSHA256(key)
			if got != want {
				return fmt.Errorf("host key fingerprint mismatch: got %s, want %s", got, want)
			}
			return nil
		}
	}

	return &ssh.ClientConfig{
		User:            sc.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
	}, nil
}
