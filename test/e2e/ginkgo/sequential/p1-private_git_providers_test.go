//go:build e2e
// +build e2e

/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package sequential

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/commands"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/config"
)

var _ = Describe("Fleet UI Sequential E2E Tests", Label("p1", "private"), func() {

	Context("private_git_providers", func() {

		BeforeEach(func(ctx context.Context) {
			fixture.EnsureCleanSlate(ctx)
		})

		AfterEach(func(ctx context.Context) {
			fixture.OutputDebugOnFail(ctx, commands.WorkspaceLocal)
			fixture.CheckPageErrors()
		})

		deploy := func(ctx context.Context, repo commands.GitRepoConfig) {
			c := fixture.Current().Commands

			Expect(c.AddOrEditGitRepo(ctx, repo)).To(Succeed())
			Expect(c.ClickButton(ctx, "Create")).To(Succeed())
			Expect(c.CheckGitRepoStatus(ctx, repo.Name, "1 / 1", "")).To(Succeed())
			Expect(c.DeleteAllFleetRepos(ctx)).To(Succeed())
		}

		DescribeTable("deploys from a private repository over http",
			func(ctx context.Context, provider string) {
				creds := fixture.RequireProvider(provider)

				deploy(ctx, commands.GitRepoConfig{
					Name:        "local-private-" + provider + "-http",
					URL:         creds.RepoURL,
					Branch:      creds.Branch,
					Path:        creds.Path,
					AuthScope:   commands.AuthScopeGit,
					AuthType:    commands.AuthHTTP,
					Credentials: commands.GitRepoCredentials{Username: creds.Username, Password: creds.Password},
					Workspace:   commands.WorkspaceLocal,
				})
			},
			Entry("GitHub", FlakeAttempts(2), config.ProviderGitHub),
			Entry("GitLab", FlakeAttempts(2), config.ProviderGitLab),
			Entry("Bitbucket", FlakeAttempts(2), config.ProviderBitbucket),
			Entry("Azure DevOps", FlakeAttempts(2), config.ProviderAzure),
		)

		DescribeTable("deploys from a private repository over ssh",
			func(ctx context.Context, provider string) {
				fixture.RequireSSHKeys()
				cfg := fixture.Current().Config
				creds, ok := cfg.Provider(provider)
				Expect(ok).To(BeTrue())

				deploy(ctx, commands.GitRepoConfig{
					Name:      "local-private-" + provider + "-ssh",
					URL:       creds.SSHRepoURL,
					Branch:    creds.Branch,
					Path:      creds.Path,
					AuthScope: commands.AuthScopeGit,
					AuthType:  commands.AuthSSH,
					Credentials: commands.GitRepoCredentials{
						PublicKey:  cfg.RSAPublicKey,
						PrivateKey: cfg.RSAPrivateKey,
					},
					Workspace: commands.WorkspaceLocal,
				})
			},
			Entry("GitHub", FlakeAttempts(2), config.ProviderGitHub),
			Entry("GitLab", FlakeAttempts(2), config.ProviderGitLab),
			Entry("Bitbucket", FlakeAttempts(2), config.ProviderBitbucket),
			Entry("Azure DevOps", FlakeAttempts(2), config.ProviderAzure),
		)
	})
})
