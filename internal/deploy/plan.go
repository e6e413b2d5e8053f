// SPDX-License-Identifier: MPL-2.0

package deploy

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/ppowo/gmw/internal/config"
	"github.com/ppowo/gmw/internal/runner"
)

// LocalTarget names the local WildFly instance in plans.
const LocalTarget = "local"

// ErrMissingServerGroup is returned for domain deployments without a server group.
var ErrMissingServerGroup = errors.New("domain mode requires a server group")

type (
	// Artifact is the archive to deploy and how its module is classified.
	Artifact struct {
		// Path is the local archive path.
		Path string
		// Global marks a global module.
		Global bool
		// DeploymentPath is the global module path relative to the WildFly root.
		DeploymentPath string
	}

	// Step is one command of a plan.
	Step struct {
		Title   string
		Command runner.Command
		// Optional steps may fail without aborting the plan.
		Optional bool
	}

	// Plan is the ordered procedure for one deployment target.
	Plan struct {
		Target string
		Host   string
		Steps  []Step
		// Verify is printed for the user to follow the server log; it never
		// terminates on its own and is not executed.
		Verify *Step
	}
)

// Name returns the archive file name.
func (a Artifact) Name() string {
	return filepath.Base(a.Path)
}

// String renders the step as a shell command line.
func (s Step) String() string {
	return ShellJoin(s.Command.Program, s.Command.Args...)
}

// LocalPlan deploys to the WildFly installation at proj.WildFlyRoot.
func LocalPlan(proj config.ProjectConfig, art Artifact) (Plan, error) {
	root := proj.WildFlyRoot
	name := art.Name()
	plan := Plan{Target: LocalTarget}

	switch {
	case art.Global:
		dest := filepath.Join(root, filepath.FromSlash(art.DeploymentPath))
		plan.Steps = []Step{
			{Title: "Create module directory", Command: runner.Command{Program: "mkdir", Args: []string{"-p", dest}}},
			{Title: "Copy global module", Command: runner.Command{Program: "cp", Args: []string{art.Path, dest + string(filepath.Separator)}}},
		}
	case proj.WildFlyMode == config.WildFlyDomain:
		if proj.ServerGroup == "" {
			return Plan{}, ErrMissingServerGroup
		}
		cli := filepath.Join(root, "bin", "jboss-cli.sh")
		plan.Steps = []Step{
			{
				Title:    "Undeploy previous version",
				Command:  runner.Command{Program: cli, Args: []string{"--connect", "--command=undeploy " + name + " --server-groups=" + proj.ServerGroup}},
				Optional: true,
			},
			{
				Title:   "Deploy to server group " + proj.ServerGroup,
				Command: runner.Command{Program: cli, Args: []string{"--connect", "--command=deploy " + art.Path + " --server-groups=" + proj.ServerGroup}},
			},
		}
	default:
		deployments := filepath.Join(root, "standalone", "deployments")
		plan.Steps = []Step{
			{Title: "Copy artifact", Command: runner.Command{Program: "cp", Args: []string{art.Path, deployments + string(filepath.Separator)}}},
			{Title: "Trigger deployment", Command: runner.Command{Program: "touch", Args: []string{filepath.Join(deployments, name+".dodeploy")}}},
		}
	}
	return plan, nil
}

// RemotePlan deploys to a remote host over scp and ssh.
func RemotePlan(proj config.ProjectConfig, client string, remote config.RemoteConfig, art Artifact) (Plan, error) {
	addr := remote.Address()
	wf := remote.WildFlyPath
	name := art.Name()
	plan := Plan{Target: client, Host: addr}

	switch {
	case art.Global:
		dest := path.Join(wf, art.DeploymentPath)
		plan.Steps = []Step{
			scp("Copy global module", art.Path, addr, dest+"/"),
		}
		if remote.RestartCmd != "" {
			plan.Steps = append(plan.Steps, Step{
				Title:   "Restart WildFly",
				Command: runner.Command{Program: "ssh", Args: []string{addr, remote.RestartCmd}},
			})
		}
	case proj.WildFlyMode == config.WildFlyDomain:
		if proj.ServerGroup == "" {
			return Plan{}, ErrMissingServerGroup
		}
		cli := path.Join(wf, "bin", "jboss-cli.sh")
		undeploy := fmt.Sprintf("undeploy %s --server-groups=%s", name, proj.ServerGroup)
		deploy := fmt.Sprintf("deploy /tmp/%s --server-groups=%s", name, proj.ServerGroup)
		plan.Steps = []Step{
			scp("Copy artifact to remote server", art.Path, addr, "/tmp/"),
			withOptional(ssh("Undeploy previous version", addr, cli, "--connect", "controller=localhost", undeploy)),
			ssh("Deploy to server group "+proj.ServerGroup, addr, cli, "--connect", "controller=localhost", deploy),
		}
	default:
		deployments := path.Join(wf, "standalone", "deployments")
		plan.Steps = []Step{
			scp("Copy artifact", art.Path, addr, deployments+"/"),
			ssh("Trigger deployment", addr, "touch", path.Join(deployments, name+".dodeploy")),
		}
	}

	logDir := "standalone"
	if proj.WildFlyMode == config.WildFlyDomain {
		logDir = "domain"
	}
	verify := ssh("Follow the server log", addr, "tail", "-f", path.Join(wf, logDir, "log", "server.log"))
	plan.Verify = &verify
	return plan, nil
}

// RestartPlan returns the command that restarts the server: jboss-cli
// locally (remote is nil), or the client's restart_cmd over ssh.
func RestartPlan(proj config.ProjectConfig, remote *config.RemoteConfig) (Step, error) {
	if remote != nil {
		if remote.RestartCmd != "" {
			return Step{
				Title:   "Restart WildFly on " + remote.Host,
				Command: runner.Command{Program: "ssh", Args: []string{remote.Address(), remote.RestartCmd}},
			}, nil
		}
		cli := path.Join(remote.WildFlyPath, "bin", "jboss-cli.sh")
		args, err := restartCLIArgs(proj)
		if err != nil {
			return Step{}, err
		}
		return ssh("Restart WildFly on "+remote.Host, remote.Address(), append([]string{cli}, args...)...), nil
	}

	args, err := restartCLIArgs(proj)
	if err != nil {
		return Step{}, err
	}
	return Step{
		Title:   "Restart WildFly",
		Command: runner.Command{Program: filepath.Join(proj.WildFlyRoot, "bin", "jboss-cli.sh"), Args: args},
	}, nil
}

func restartCLIArgs(proj config.ProjectConfig) ([]string, error) {
	if proj.WildFlyMode == config.WildFlyDomain {
		if proj.ServerGroup == "" {
			return nil, ErrMissingServerGroup
		}
		return []string{"--connect", "controller=localhost", "--command=/server-group=" + proj.ServerGroup + ":restart-servers"}, nil
	}
	return []string{"--connect", "--command=:shutdown(restart=true)"}, nil
}

func scp(title, src, addr, dest string) Step {
	return Step{Title: title, Command: runner.Command{Program: "scp", Args: []string{src, addr + ":" + dest}}}
}

// ssh builds a step running words on addr. The remote side hands the command
// to a shell, so the words are quoted into a single argument.
func ssh(title, addr string, words ...string) Step {
	return Step{
		Title:   title,
		Command: runner.Command{Program: "ssh", Args: []string{addr, ShellJoin(words[0], words[1:]...)}},
	}
}

func withOptional(s Step) Step {
	s.Optional = true
	return s
}

// ShellJoin quotes each word for a POSIX shell and joins them with spaces.
func ShellJoin(program string, args ...string) string {
	words := make([]string, 0, len(args)+1)
	for _, w := range append([]string{program}, args...) {
		q, err := syntax.Quote(w, syntax.LangPOSIX)
		if err != nil {
			// Only strings holding NUL bytes cannot be quoted.
			q = fmt.Sprintf("%q", w)
		}
		words = append(words, q)
	}
	return strings.Join(words, " ")
}
