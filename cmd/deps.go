package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"cswitch/config"
	"cswitch/config/backup"
	"cswitch/internal/appconfig"
	"cswitch/internal/credstore"
	"cswitch/internal/providers"
	"cswitch/internal/remote"
	"cswitch/internal/session"
	"cswitch/internal/switcher"
)

// Shared output styles.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// services wires the explicitly constructed stores together for one
// command invocation. Nothing here is a global singleton; every command
// builds its own set.
type services struct {
	appcfg  *appconfig.Config
	store   *config.Store
	backups *backup.Engine
	catalog *providers.Catalog
	creds   credstore.Store
	session *session.Manager
	client  *remote.Client
}

func initServices() (*services, error) {
	appcfg, err := appconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load cswitch config: %w", err)
	}
	dir, err := appconfig.Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	store, err := config.NewStore()
	if err != nil {
		return nil, err
	}

	backupDir, err := backup.DefaultDir()
	if err != nil {
		return nil, err
	}
	backups, err := backup.NewEngine(store, backupDir)
	if err != nil {
		return nil, err
	}

	catalog, err := providers.NewCatalog(dir)
	if err != nil {
		return nil, err
	}

	creds, err := credstore.Open(appcfg.CredentialBackend, dir)
	if err != nil {
		return nil, err
	}

	sess := session.NewManager(dir)
	sess.AttachSecrets(creds)
	client := remote.NewClient(appcfg.RemoteBaseURL, appcfg.RemoteTimeout)
	client.SetTokenSource(sess.Token)
	client.SetUnauthorizedHook(func() {
		// A 401 anywhere invalidates the cached login.
		sess.Clear()
	})

	return &services{
		appcfg:  appcfg,
		store:   store,
		backups: backups,
		catalog: catalog,
		creds:   creds,
		session: sess,
		client:  client,
	}, nil
}

// switcher builds the coordinator, attaching the remote mirror only when
// an authenticated session exists.
func (s *services) switcher() (*switcher.Switcher, *remote.Mirror) {
	var mirror *remote.Mirror
	if s.session.Active() {
		mirror = remote.NewMirror(s.client)
	}
	return switcher.New(s.store, s.backups, s.creds, s.catalog, mirror), mirror
}

// targets lists all switchable providers, built-ins first.
func (s *services) targets() []providers.Target {
	var out []providers.Target
	for _, p := range s.catalog.Builtins() {
		out = append(out, providers.BuiltinTarget(p))
	}
	for _, p := range s.catalog.Customs() {
		out = append(out, providers.CustomTarget(p))
	}
	return out
}
