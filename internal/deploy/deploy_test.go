// SPDX-License-Identifier: MPL-2.0

package deploy

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/ppowo/gmw/internal/config"
	"github.com/ppowo/gmw/internal/runner"
)

func TestFindArtifact(t *testing.T) {
	t.Parallel()

	file := &fstest.MapFile{Data: []byte("PK")}
	tests := []struct {
		name     string
		files    []string
		artifact string
		want     string
		wantErr  bool
	}{
		{
			name:     "war preferred",
			files:    []string{"target/core-1.0.jar", "target/web-1.0.war"},
			artifact: "core",
			want:     "target/web-1.0.war",
		},
		{
			name:     "jar named after artifact",
			files:    []string{"target/aaa-shaded.jar", "target/core-1.0.jar", "target/core-1.0-sources.jar"},
			artifact: "core",
			want:     "target/core-1.0.jar",
		},
		{
			name:     "first jar otherwise",
			files:    []string{"target/zeta.jar", "target/alpha.jar"},
			artifact: "core",
			want:     "target/alpha.jar",
		},
		{
			name:     "secondary jars ignored",
			files:    []string{"target/core-1.0-sources.jar", "target/core-1.0-javadoc.jar", "target/core-1.0-tests.jar"},
			artifact: "core",
			wantErr:  true,
		},
		{
			name:     "nested outputs ignored",
			files:    []string{"target/classes/lib.jar"},
			artifact: "lib",
			wantErr:  true,
		},
		{
			name:    "empty",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fsys := fstest.MapFS{}
			for _, f := range tt.files {
				fsys[f] = file
			}
			got, err := FindArtifact(fsys, "target", tt.artifact)
			if tt.wantErr {
				if !errors.Is(err, ErrArtifactNotFound) {
					t.Errorf("FindArtifact() error = %v, want ErrArtifactNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindArtifact() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FindArtifact() = %q, want %q", got, tt.want)
			}
		})
	}
}

func argvs(p Plan) [][]string {
	out := make([][]string, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = append([]string{s.Command.Program}, s.Command.Args...)
	}
	return out
}

func TestLocalPlan(t *testing.T) {
	t.Parallel()

	standalone := config.ProjectConfig{WildFlyRoot: "/opt/wf", WildFlyMode: config.WildFlyStandalone}
	domain := config.ProjectConfig{WildFlyRoot: "/opt/wf", WildFlyMode: config.WildFlyDomain, ServerGroup: "main"}

	tests := []struct {
		name string
		proj config.ProjectConfig
		art  Artifact
		want [][]string
	}{
		{
			name: "standalone",
			proj: standalone,
			art:  Artifact{Path: "/src/web/target/web.war"},
			want: [][]string{
				{"cp", "/src/web/target/web.war", "/opt/wf/standalone/deployments/"},
				{"touch", "/opt/wf/standalone/deployments/web.war.dodeploy"},
			},
		},
		{
			name: "global",
			proj: standalone,
			art:  Artifact{Path: "/src/auth/target/auth.jar", Global: true, DeploymentPath: "modules/org/auth/main"},
			want: [][]string{
				{"mkdir", "-p", "/opt/wf/modules/org/auth/main"},
				{"cp", "/src/auth/target/auth.jar", "/opt/wf/modules/org/auth/main/"},
			},
		},
		{
			name: "domain",
			proj: domain,
			art:  Artifact{Path: "/src/web/target/web.war"},
			want: [][]string{
				{"/opt/wf/bin/jboss-cli.sh", "--connect", "--command=undeploy web.war --server-groups=main"},
				{"/opt/wf/bin/jboss-cli.sh", "--connect", "--command=deploy /src/web/target/web.war --server-groups=main"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plan, err := LocalPlan(tt.proj, tt.art)
			if err != nil {
				t.Fatalf("LocalPlan() error = %v", err)
			}
			if plan.Target != LocalTarget {
				t.Errorf("Target = %q", plan.Target)
			}
			got := argvs(plan)
			if !slices.EqualFunc(got, tt.want, slices.Equal[[]string]) {
				t.Errorf("steps =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRemotePlan(t *testing.T) {
	t.Parallel()

	remote := config.RemoteConfig{Host: "test.example.com", User: "deploy", WildFlyPath: "/opt/wildfly", RestartCmd: "sudo systemctl restart wildfly"}

	t.Run("standalone", func(t *testing.T) {
		t.Parallel()

		proj := config.ProjectConfig{WildFlyMode: config.WildFlyStandalone}
		plan, err := RemotePlan(proj, "test", remote, Artifact{Path: "/src/web/target/web.war"})
		if err != nil {
			t.Fatal(err)
		}
		got := argvs(plan)
		if len(got) != 2 {
			t.Fatalf("steps = %q", got)
		}
		if !slices.Equal(got[0], []string{"scp", "/src/web/target/web.war", "deploy@test.example.com:/opt/wildfly/standalone/deployments/"}) {
			t.Errorf("copy step = %q", got[0])
		}
		if got[1][0] != "ssh" || got[1][1] != "deploy@test.example.com" || !strings.Contains(got[1][2], "/opt/wildfly/standalone/deployments/web.war.dodeploy") {
			t.Errorf("trigger step = %q", got[1])
		}
		if plan.Verify == nil || !strings.Contains(plan.Verify.String(), "/opt/wildfly/standalone/log/server.log") {
			t.Errorf("Verify = %+v", plan.Verify)
		}
	})

	t.Run("domain", func(t *testing.T) {
		t.Parallel()

		proj := config.ProjectConfig{WildFlyMode: config.WildFlyDomain, ServerGroup: "backend"}
		plan, err := RemotePlan(proj, "test", remote, Artifact{Path: "/src/web/target/web.war"})
		if err != nil {
			t.Fatal(err)
		}
		got := argvs(plan)
		if len(got) != 3 {
			t.Fatalf("steps = %q", got)
		}
		if got[0][2] != "deploy@test.example.com:/tmp/" {
			t.Errorf("copy destination = %q", got[0][2])
		}
		if !plan.Steps[1].Optional || plan.Steps[2].Optional {
			t.Error("only the undeploy step should be optional")
		}
		for _, want := range []string{"controller=localhost", "deploy /tmp/web.war --server-groups=backend"} {
			if !strings.Contains(got[2][2], want) {
				t.Errorf("deploy command %q should contain %q", got[2][2], want)
			}
		}
		if !strings.Contains(plan.Verify.String(), "/opt/wildfly/domain/log/server.log") {
			t.Errorf("Verify = %s", plan.Verify)
		}
	})

	t.Run("global", func(t *testing.T) {
		t.Parallel()

		proj := config.ProjectConfig{WildFlyMode: config.WildFlyStandalone}
		plan, err := RemotePlan(proj, "test", remote, Artifact{Path: "/src/auth/target/auth.jar", Global: true, DeploymentPath: "modules/org/auth/main"})
		if err != nil {
			t.Fatal(err)
		}
		got := argvs(plan)
		want := [][]string{
			{"scp", "/src/auth/target/auth.jar", "deploy@test.example.com:/opt/wildfly/modules/org/auth/main/"},
			{"ssh", "deploy@test.example.com", "sudo systemctl restart wildfly"},
		}
		if !slices.EqualFunc(got, want, slices.Equal[[]string]) {
			t.Errorf("steps = %q", got)
		}
	})

	t.Run("domain without group", func(t *testing.T) {
		t.Parallel()

		proj := config.ProjectConfig{WildFlyMode: config.WildFlyDomain}
		if _, err := RemotePlan(proj, "test", remote, Artifact{Path: "a.war"}); !errors.Is(err, ErrMissingServerGroup) {
			t.Errorf("RemotePlan() error = %v", err)
		}
	})
}

func TestRestartPlan(t *testing.T) {
	t.Parallel()

	standalone := config.ProjectConfig{WildFlyRoot: "/opt/wf", WildFlyMode: config.WildFlyStandalone}
	domain := config.ProjectConfig{WildFlyRoot: "/opt/wf", WildFlyMode: config.WildFlyDomain, ServerGroup: "main"}

	step, err := RestartPlan(standalone, nil)
	if err != nil {
		t.Fatal(err)
	}
	if step.Command.Program != "/opt/wf/bin/jboss-cli.sh" || !slices.Contains(step.Command.Args, "--command=:shutdown(restart=true)") {
		t.Errorf("standalone restart = %v", step.Command)
	}

	step, err = RestartPlan(domain, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(step.Command.Args, "--command=/server-group=main:restart-servers") {
		t.Errorf("domain restart = %v", step.Command)
	}

	remote := &config.RemoteConfig{Host: "h", User: "u", WildFlyPath: "/wf", RestartCmd: "systemctl restart wildfly"}
	step, err = RestartPlan(standalone, remote)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(step.Command.Args, []string{"u@h", "systemctl restart wildfly"}) {
		t.Errorf("remote restart = %v", step.Command)
	}

	remote.RestartCmd = ""
	step, err = RestartPlan(standalone, remote)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"u@h", "/wf/bin/jboss-cli.sh --connect '--command=:shutdown(restart=true)'"}
	if step.Command.Program != "ssh" || !slices.Equal(step.Command.Args, want) {
		t.Errorf("remote restart without restart_cmd = %v, want ssh %v", step.Command, want)
	}

	step, err = RestartPlan(domain, remote)
	if err != nil {
		t.Fatal(err)
	}
	want = []string{"u@h", "/wf/bin/jboss-cli.sh --connect 'controller=localhost' '--command=/server-group=main:restart-servers'"}
	if !slices.Equal(step.Command.Args, want) {
		t.Errorf("remote domain restart = %v, want ssh %v", step.Command, want)
	}
}

func TestShellJoin(t *testing.T) {
	t.Parallel()

	if got := ShellJoin("touch", "/opt/wf/a.war.dodeploy"); got != "touch /opt/wf/a.war.dodeploy" {
		t.Errorf("ShellJoin() = %q", got)
	}
	got := ShellJoin("echo", "two words")
	if got == "echo two words" || !strings.Contains(got, "two words") {
		t.Errorf("ShellJoin() must keep %q as one word, got %q", "two words", got)
	}
}

func TestExecutor(t *testing.T) {
	t.Parallel()

	proj := config.ProjectConfig{WildFlyRoot: "/opt/wf", WildFlyMode: config.WildFlyDomain, ServerGroup: "main"}
	plan, err := LocalPlan(proj, Artifact{Path: "/t/web.war"})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("optional failure continues", func(t *testing.T) {
		t.Parallel()

		rec := &runner.Recorder{Script: runner.FailOn(plan.Steps[0].Command.String(), runner.KindDeploy, 1)}
		var seen []string
		exec := &Executor{Runner: rec, Progress: func(i, total int, s Step) { seen = append(seen, s.Title) }}
		if err := exec.Execute(context.Background(), plan); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if len(rec.Calls()) != 2 || len(seen) != 2 {
			t.Errorf("calls = %v", rec.Commands())
		}
		for _, c := range rec.Calls() {
			if c.Options.Kind != runner.KindDeploy {
				t.Errorf("step ran as kind %v", c.Options.Kind)
			}
		}
	})

	t.Run("required failure stops", func(t *testing.T) {
		t.Parallel()

		standalone := config.ProjectConfig{WildFlyRoot: "/opt/wf", WildFlyMode: config.WildFlyStandalone}
		p, err := LocalPlan(standalone, Artifact{Path: "/t/web.war"})
		if err != nil {
			t.Fatal(err)
		}
		rec := &runner.Recorder{Script: runner.FailOn(p.Steps[0].Command.String(), runner.KindDeploy, 1)}
		err = (&Executor{Runner: rec}).Execute(context.Background(), p)
		if !errors.Is(err, runner.ErrDeploymentIO) {
			t.Fatalf("Execute() error = %v, want ErrDeploymentIO", err)
		}
		if len(rec.Calls()) != 1 {
			t.Errorf("later steps should not run, got %v", rec.Commands())
		}
	})
}
