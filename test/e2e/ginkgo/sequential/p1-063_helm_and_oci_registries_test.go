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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/commands"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/config"
)

var _ = Describe("Fleet UI Sequential E2E Tests", Label("p1"), func() {

	Context("FLEET-63_private_helm_registry_with_helm_repo_url_regex", func() {

		const (
			repoName = "default-cluster-helmrepo-63"
			repoURL  = "https://github.com/thehejik/fleet-examples.git"
			branch   = "main"
		)

		helmRepo := func(regex string) commands.GitRepoConfig {
			return commands.GitRepoConfig{
				Name:         repoName,
				URL:          repoURL,
				Branch:       branch,
				Path:         "local-chart",
				AuthScope:    commands.AuthScopeHelm,
				AuthType:     commands.AuthHTTP,
				Credentials:  commands.GitRepoCredentials{Username: "user", Password: "password"},
				HelmURLRegex: regex,
				Workspace:    commands.WorkspaceDefault,
			}
		}

		BeforeEach(func(ctx context.Context) {
			fixture.EnsureCleanSlate(ctx)
			c := fixture.Current().Commands

			By("deploying the authenticated Helm registry")
			// The registry is exposed through the ingress of the cluster Rancher runs on.
			Expect(c.Wait(ctx, 20*time.Second)).To(Succeed())
			Expect(c.AddOrEditGitRepo(ctx, commands.GitRepoConfig{
				Name:          "helm-registries",
				URL:           repoURL,
				Branch:        branch,
				Path:          "chart-registry",
				KeepResources: commands.ToggleYes,
				Workspace:     commands.WorkspaceDefault,
			})).To(Succeed())
			Expect(c.ClickButton(ctx, "Create")).To(Succeed())
			Expect(c.VerifyTableRow(ctx, 0, "Active", commands.AllReady())).To(Succeed())
		})

		AfterEach(func(ctx context.Context) {
			fixture.OutputDebugOnFail(ctx, commands.WorkspaceDefault)
			fixture.CheckPageErrors()
		})

		It("sends Helm credentials only to repositories matching helmRepoURLRegex", fixture.Case(63), func(ctx context.Context) {
			s := fixture.Current()
			c := s.Commands

			By("using a matching regex")
			Expect(c.AddOrEditGitRepo(ctx, helmRepo("http.*"))).To(Succeed())
			Expect(c.ClickButton(ctx, "Create")).To(Succeed())
			Expect(c.VerifyTableRow(ctx, 0, "Active", commands.AllReady())).To(Succeed())

			Expect(c.AccessMenuSelection(ctx, s.Config.DownstreamClusterName, "Storage", "ConfigMaps")).To(Succeed())
			Expect(c.NamespaceToggle(ctx, "All Namespaces")).To(Succeed())
			Expect(c.FilterInSearchBox(ctx, "local-chart-configmap")).To(Succeed())
			Expect(c.Wait(ctx, 2*time.Second)).To(Succeed())
			Expect(c.OpenResourceDetail(ctx, "local-chart-configmap")).To(Succeed())
			Expect(c.CheckResourceData(ctx, "sample-cm", "sample-data-inside")).To(Succeed())
			Expect(c.DeleteAllFleetRepos(ctx)).To(Succeed())

			By("using a regex that matches no repository")
			Expect(c.AddOrEditGitRepo(ctx, helmRepo("1234.*"))).To(Succeed())
			Expect(c.ClickButton(ctx, "Create")).To(Succeed())
			Expect(c.CheckGitRepoError(ctx, "error code: 401")).To(Succeed())
			Expect(c.DeleteAllFleetRepos(ctx)).To(Succeed())
		})
	})

	Context("FLEET-60_oci_helm_charts", func() {

		BeforeEach(func(ctx context.Context) {
			fixture.EnsureCleanSlate(ctx)
		})

		AfterEach(func(ctx context.Context) {
			fixture.OutputDebugOnFail(ctx, commands.WorkspaceDefault)
			fixture.CheckPageErrors()
		})

		checkConfigMap := func(ctx context.Context, repo commands.GitRepoConfig) {
			s := fixture.Current()
			c := s.Commands

			Expect(c.AddOrEditGitRepo(ctx, repo)).To(Succeed())
			Expect(c.ClickButton(ctx, "Create")).To(Succeed())
			Expect(c.VerifyTableRow(ctx, 0, "Active", commands.AllReady())).To(Succeed())

			By("checking the ConfigMap deployed from the OCI chart")
			Expect(c.AccessMenuSelection(ctx, s.Config.DownstreamClusterName, "Storage", "ConfigMaps")).To(Succeed())
			Expect(c.NamespaceToggle(ctx, "All Namespaces")).To(Succeed())
			Expect(c.FilterInSearchBox(ctx, "fleet-test-configmap")).To(Succeed())
			Expect(c.OpenResourceDetail(ctx, "fleet-test-configmap")).To(Succeed())
			Expect(c.CheckResourceData(ctx, "default-name", "value")).To(Succeed())

			Expect(c.DeleteAllFleetRepos(ctx)).To(Succeed())
		}

		It("deploys a public OCI Helm chart from the GitHub registry", fixture.Case(60), func(ctx context.Context) {
			checkConfigMap(ctx, commands.GitRepoConfig{
				Name:      "default-oci-60",
				URL:       "https://github.com/rancher/fleet-test-data",
				Branch:    "master",
				Path:      "helm-oci",
				Workspace: commands.WorkspaceDefault,
			})
		})

		It("deploys a private OCI Helm chart from the GitHub registry", fixture.Case(127), func(ctx context.Context) {
			creds := fixture.RequireProvider(config.ProviderGitHub)

			checkConfigMap(ctx, commands.GitRepoConfig{
				Name:        "default-oci-127",
				URL:         "https://github.com/fleetqa/fleet-qa-examples-public",
				Branch:      "main",
				Path:        "helm-oci-auth",
				AuthScope:   commands.AuthScopeHelm,
				AuthType:    commands.AuthHTTP,
				Credentials: commands.GitRepoCredentials{Username: creds.Username, Password: creds.Password},
				Workspace:   commands.WorkspaceDefault,
			})
		})
	})
})
