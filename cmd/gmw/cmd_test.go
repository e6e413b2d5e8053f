// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"runtime"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-git/go-billy/v5/memfs"

	"github.com/ppowo/gmw/internal/config"
	"github.com/ppowo/gmw/internal/confirm"
	"github.com/ppowo/gmw/internal/runner"
	"github.com/ppowo/gmw/internal/testutil"
	"github.com/ppowo/gmw/internal/vcs"
)

const testConfig = `
projects:
  app:
    base_path: /work/app
    wildfly_root: /opt/wildfly
    wildfly_mode: standalone
    default_profile: TEST
    available_profiles: [TEST, PROD]
    clients:
      qa:
        host: qa.example.com
        user: deploy
        wildfly_path: /srv/wildfly
    modules:
      web: ""
      api: ""
      auth: modules/org/auth/main
`

type (
	staticProvider struct {
		cfg *config.Config
		err error
	}

	harness struct {
		app    *App
		rec    *runner.Recorder
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	}
)

func (p staticProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	return p.cfg, p.err
}

func mustParse(t *testing.T, doc string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(doc), config.FormatYAML, "test.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return cfg
}

// newHarness builds an App rooted in an in-memory workspace: module "web"
// (war) with a built artifact, "api" (war) that was never built, global
// module "auth" (jar) with a built artifact, and "stray", which is missing
// from the module table.
func newHarness(t *testing.T, wd string, answer bool) *harness {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("workspace paths are POSIX")
	}

	fsys := memfs.New()
	testutil.WritePOM(t, fsys, "/work/app/web", "web", "war")
	testutil.WritePOM(t, fsys, "/work/app/auth", "auth", "jar")
	testutil.WritePOM(t, fsys, "/work/app/api", "api", "war")
	testutil.WritePOM(t, fsys, "/work/app/stray", "stray", "jar")

	artifacts := map[string]fs.FS{
		"/work/app/web": fstest.MapFS{"target/web-1.0.war": {}},
		"/work/app/auth": fstest.MapFS{
			"target/auth-1.0.jar":         {},
			"target/auth-1.0-sources.jar": {},
		},
	}

	h := &harness{rec: &runner.Recorder{}, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.app = NewApp(Dependencies{
		Config: staticProvider{cfg: mustParse(t, testConfig)},
		FS:     fsys,
		ArtifactFS: func(dir string) fs.FS {
			if a, ok := artifacts[dir]; ok {
				return a
			}
			return fstest.MapFS{}
		},
		Runner:    h.rec,
		Confirmer: confirm.Always(answer),
		Getwd:     func() (string, error) { return wd, nil },
		Revision: func(string) (*vcs.Revision, error) {
			return &vcs.Revision{Branch: "main", Hash: "0123456789abcdef"}, nil
		},
		Stdout: h.stdout,
		Stderr: h.stderr,
	})
	return h
}

func (h *harness) run(t *testing.T, args ...string) int {
	t.Helper()
	root := NewRootCommand(h.app)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

func TestBuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		wd         string
		args       []string
		answer     bool
		script     func(runner.Command) (runner.Result, error)
		wantCode   int
		wantCmds   []string
		wantStdout []string
		wantStderr []string
	}{
		{
			name:       "dry run prints the default profile build",
			wd:         "/work/app/web/src/main",
			args:       []string{"build", "--dry-run"},
			wantStdout: []string{"Detected: app / web", "Profiles: TEST (default)", "Would execute:", "mvn clean package -PTEST"},
		},
		{
			name:     "build reports artifact, restart and guide",
			wd:       "/work/app/web",
			args:     []string{"build", "PROD"},
			answer:   true,
			wantCmds: []string{"mvn clean package -PPROD"},
			wantStdout: []string{
				"Build completed successfully",
				"Revision: main@01234567",
				"Artifact: /work/app/web/target/web-1.0.war",
				"Restart: not needed (war hot-deployment)",
				"Remote deployment guide (qa)",
				"deploy@qa.example.com",
			},
		},
		{
			name:     "skip tests flag",
			wd:       "/work/app/web",
			args:     []string{"build", "--skip-tests"},
			answer:   true,
			wantCmds: []string{"mvn clean package -PTEST -DskipTests"},
		},
		{
			name:       "global jar needs a restart",
			wd:         "/work/app/auth",
			args:       []string{"build", "--client", "local"},
			answer:     true,
			wantCmds:   []string{"mvn clean install -PTEST"},
			wantStdout: []string{"Artifact: /work/app/auth/target/auth-1.0.jar", "Restart: required (global module modification)", "jboss-cli.sh"},
		},
		{
			name:       "declined",
			wd:         "/work/app/web",
			args:       []string{"build"},
			wantStdout: []string{"Build cancelled."},
		},
		{
			name:       "invalid profile",
			wd:         "/work/app/web",
			args:       []string{"build", "DEV"},
			wantCode:   ExitDetection,
			wantStderr: []string{`invalid profile "DEV"`, "TEST, PROD"},
		},
		{
			name:       "unconfigured module",
			wd:         "/work/app/stray",
			args:       []string{"build"},
			wantCode:   ExitDetection,
			wantStderr: []string{`module "stray" is not configured`, `stray: ""`},
		},
		{
			name:       "outside every project",
			wd:         "/elsewhere",
			args:       []string{"build"},
			wantCode:   ExitDetection,
			wantStderr: []string{"--verbose"},
		},
		{
			name:       "unknown client",
			wd:         "/work/app/web",
			args:       []string{"build", "--client", "prod"},
			wantCode:   ExitConfig,
			wantStderr: []string{`unknown client "prod"`},
		},
		{
			name:     "build tool exit code is passed through",
			wd:       "/work/app/web",
			args:     []string{"build"},
			answer:   true,
			script:   runner.FailOn("mvn clean package -PTEST", runner.KindBuild, 7),
			wantCode: 7,
			wantCmds: []string{"mvn clean package -PTEST"},
		},
		{
			name:     "watch and dry-run are exclusive",
			wd:       "/work/app/web",
			args:     []string{"build", "--watch", "--dry-run"},
			wantCode: ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, tt.wd, tt.answer)
			h.rec.Script = tt.script

			if code := h.run(t, tt.args...); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\nstdout:\n%s\nstderr:\n%s", code, tt.wantCode, h.stdout, h.stderr)
			}
			if got := h.rec.Commands(); !slices.Equal(got, tt.wantCmds) {
				t.Errorf("commands = %q, want %q", got, tt.wantCmds)
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(h.stdout.String(), want) {
					t.Errorf("stdout missing %q:\n%s", want, h.stdout)
				}
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(h.stderr.String(), want) {
					t.Errorf("stderr missing %q:\n%s", want, h.stderr)
				}
			}
		})
	}
}

func TestBuild_UsesConfiguredTimeoutAndStreams(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "/work/app/web", true)
	if code := h.run(t, "build", "--timeout", "90s"); code != 0 {
		t.Fatalf("exit code = %d\n%s", code, h.stderr)
	}
	calls := h.rec.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	opts := calls[0].Options
	if opts.Kind != runner.KindBuild || opts.Timeout.Seconds() != 90 {
		t.Errorf("options = %+v", opts)
	}
	if calls[0].Command.Dir != "/work/app/web" {
		t.Errorf("Dir = %q", calls[0].Command.Dir)
	}
}

func TestDeploy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		wd         string
		args       []string
		answer     bool
		script     func(runner.Command) (runner.Result, error)
		wantCode   int
		wantCmds   []string
		wantStdout []string
	}{
		{
			name:   "local standalone hot deployment",
			wd:     "/work/app/web",
			args:   []string{"deploy"},
			answer: true,
			wantCmds: []string{
				"cp /work/app/web/target/web-1.0.war /opt/wildfly/standalone/deployments/",
				"touch /opt/wildfly/standalone/deployments/web-1.0.war.dodeploy",
			},
			wantStdout: []string{"Target: local", "Deployed web-1.0.war to local"},
		},
		{
			name:   "global module is copied and the server restarted",
			wd:     "/work/app/auth",
			args:   []string{"deploy"},
			answer: true,
			wantCmds: []string{
				"mkdir -p /opt/wildfly/modules/org/auth/main",
				"cp /work/app/auth/target/auth-1.0.jar /opt/wildfly/modules/org/auth/main/",
				"/opt/wildfly/bin/jboss-cli.sh --connect --command=:shutdown(restart=true)",
			},
			wantStdout: []string{"Restart triggered"},
		},
		{
			name:   "explicit artifact relative to the working directory",
			wd:     "/work/app/web",
			args:   []string{"deploy", "build/custom.war", "--restart"},
			answer: true,
			wantCmds: []string{
				"cp /work/app/web/build/custom.war /opt/wildfly/standalone/deployments/",
				"touch /opt/wildfly/standalone/deployments/custom.war.dodeploy",
				"/opt/wildfly/bin/jboss-cli.sh --connect --command=:shutdown(restart=true)",
			},
		},
		{
			name:       "dry run to a remote client",
			wd:         "/work/app/web",
			args:       []string{"deploy", "--client", "qa", "--dry-run"},
			wantStdout: []string{"Deployment steps", "Host: deploy@qa.example.com", "Follow the server log"},
		},
		{
			name:       "declined",
			wd:         "/work/app/web",
			args:       []string{"deploy"},
			wantStdout: []string{"Deployment cancelled."},
		},
		{
			name:     "copy failure",
			wd:       "/work/app/web",
			args:     []string{"deploy"},
			answer:   true,
			script:   runner.FailOn("cp /work/app/web/target/web-1.0.war /opt/wildfly/standalone/deployments/", runner.KindDeploy, 1),
			wantCode: ExitDeploy,
			wantCmds: []string{"cp /work/app/web/target/web-1.0.war /opt/wildfly/standalone/deployments/"},
		},
		{
			name:     "missing artifact",
			wd:       "/work/app/api",
			args:     []string{"deploy"},
			answer:   true,
			wantCode: ExitDeploy,
		},
		{
			name:     "unknown client",
			wd:       "/work/app/web",
			args:     []string{"deploy", "--client", "nope"},
			answer:   true,
			wantCode: ExitConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, tt.wd, tt.answer)
			h.rec.Script = tt.script

			if code := h.run(t, tt.args...); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\nstdout:\n%s\nstderr:\n%s", code, tt.wantCode, h.stdout, h.stderr)
			}
			if got := h.rec.Commands(); !slices.Equal(got, tt.wantCmds) {
				t.Errorf("commands = %q, want %q", got, tt.wantCmds)
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(h.stdout.String(), want) {
					t.Errorf("stdout missing %q:\n%s", want, h.stdout)
				}
			}
		})
	}
}

func TestDeploy_RemoteClient(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "/work/app/web", true)
	if code := h.run(t, "deploy", "--client", "qa"); code != 0 {
		t.Fatalf("exit code = %d\n%s", code, h.stderr)
	}
	cmds := h.rec.Commands()
	if len(cmds) != 2 {
		t.Fatalf("commands = %q, want scp and ssh", cmds)
	}
	if cmds[0] != "scp /work/app/web/target/web-1.0.war deploy@qa.example.com:/srv/wildfly/standalone/deployments/" {
		t.Errorf("scp = %q", cmds[0])
	}
	if !strings.HasPrefix(cmds[1], "ssh deploy@qa.example.com ") || !strings.Contains(cmds[1], "web-1.0.war.dodeploy") {
		t.Errorf("ssh = %q", cmds[1])
	}
	for _, c := range h.rec.Calls() {
		if c.Options.Kind != runner.KindDeploy {
			t.Errorf("%s ran as %v", c.Command, c.Options.Kind)
		}
	}
}

func TestClients(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "/work/app/web", true)
	if code := h.run(t, "clients"); code != 0 {
		t.Fatalf("exit code = %d\n%s", code, h.stderr)
	}
	for _, want := range []string{"app", "CLIENT", "qa", "deploy@qa.example.com", "/srv/wildfly", "*"} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Errorf("stdout missing %q:\n%s", want, h.stdout)
		}
	}
}

func TestInfo(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "/work/app/auth", true)
	if code := h.run(t, "info", "PROD"); code != 0 {
		t.Fatalf("exit code = %d\n%s", code, h.stderr)
	}
	for _, want := range []string{
		"Detected: app / auth",
		"Deployment: global module at modules/org/auth/main",
		"Descriptor: /work/app/auth/pom.xml",
		"mvn clean install -PPROD",
		"Restart: required (global module modification)",
	} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Errorf("stdout missing %q:\n%s", want, h.stdout)
		}
	}
	if len(h.rec.Calls()) != 0 {
		t.Errorf("info ran commands: %q", h.rec.Commands())
	}
}

func TestConfigValidate_ReportsRestartWarnings(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "/work/app/web", true)
	h.app.Config = staticProvider{cfg: mustParse(t, testConfig+`
restart_rules:
  patterns:
    - match: "("
      severity: required
      reason: broken
    - match: "\\.war$"
      severity: none
      reason: war
`)}
	if code := h.run(t, "config", "validate"); code != 0 {
		t.Fatalf("exit code = %d\n%s", code, h.stderr)
	}
	for _, want := range []string{"warning:", `restart_rules.patterns[0] "("`, "1 restart warnings"} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Errorf("stdout missing %q:\n%s", want, h.stdout)
		}
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "/work/app/web", true)
	if code := h.run(t, "config", "show"); code != 0 {
		t.Fatalf("exit code = %d\n%s", code, h.stderr)
	}
	for _, want := range []string{"base_path: /work/app", "qa.example.com", "modules/org/auth/main"} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Errorf("stdout missing %q:\n%s", want, h.stdout)
		}
	}
}

func TestConfigLoadFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "/work/app/web", true)
	h.app.Config = staticProvider{err: config.ErrConfigNotFound}
	if code := h.run(t, "build", "--verbose"); code != ExitConfig {
		t.Fatalf("exit code = %d, want %d", code, ExitConfig)
	}
	if !strings.Contains(h.stderr.String(), "Configuration could not be loaded") {
		t.Errorf("verbose output should include the catalog guidance:\n%s", h.stderr)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "/", true)
	if code := h.run(t, "version"); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(h.stdout.String(), "gmw ") {
		t.Errorf("stdout = %q", h.stdout)
	}
}
