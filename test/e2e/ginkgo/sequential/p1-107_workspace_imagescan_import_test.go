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
)

var _ = Describe("Fleet UI Sequential E2E Tests", Label("p1"), func() {

	Context("FLEET-107_local_cluster_workspace", func() {

		BeforeEach(func(ctx context.Context) {
			fixture.RequireRancherVersion("2.8")
			fixture.EnsureCleanSlate(ctx)
		})

		AfterEach(func(ctx context.Context) {
			fixture.OutputDebugOnFail(ctx, commands.WorkspaceLocal)
			fixture.CheckPageErrors()
		})

		It("does not offer to move the local cluster to another workspace", fixture.Case(107), func(ctx context.Context) {
			c := fixture.Current().Commands

			Expect(c.AccessMenuSelection(ctx, "Continuous Delivery", "Clusters", "")).To(Succeed())
			Expect(c.FleetNamespaceToggle(ctx, commands.WorkspaceLocal)).To(Succeed())
			Expect(c.Open3dotsMenu(ctx, "local", "Change workspace", true)).To(Succeed())
		})
	})

	Context("FLEET-112_imagescan_without_semver_range", func() {

		BeforeEach(func(ctx context.Context) {
			fixture.RequireRancherVersion("2.8")
			fixture.EnsureCleanSlate(ctx)
		})

		AfterEach(func(ctx context.Context) {
			fixture.OutputDebugOnFail(ctx, commands.WorkspaceLocal)
			fixture.CheckPageErrors()
		})

		It("keeps the fleet controller running when an imagescan has no semver range", fixture.Case(112), func(ctx context.Context) {
			s := fixture.Current()
			c := s.Commands

			Expect(c.AddOrEditGitRepo(ctx, commands.GitRepoConfig{
				Name:      "local-cluster-imagescan-112",
				URL:       "https://github.com/rancher/fleet-test-data",
				Branch:    "master",
				Path:      "imagescans",
				Workspace: commands.WorkspaceLocal,
			})).To(Succeed())
			Expect(c.ClickButton(ctx, "Create")).To(Succeed())
			Expect(c.VerifyTableRow(ctx, 0, "Error", commands.Contains("1/1"))).To(Succeed())

			By("checking the fleet-controller pod")
			Expect(c.AccessMenuSelection(ctx, s.Config.ClusterName, "Workloads", "")).To(Succeed())
			Expect(c.NamespaceToggle(ctx, "All Namespaces")).To(Succeed())
			Expect(c.FilterInSearchBox(ctx, "fleet-controller")).To(Succeed())
			Expect(c.VerifyTableRow(ctx, 0, "Running", commands.Contains("fleet-controller"))).To(Succeed())

			Expect(c.DeleteAllFleetRepos(ctx)).To(Succeed())
		})
	})

	Context("FLEET-108_import_yaml", func() {

		BeforeEach(func(ctx context.Context) {
			fixture.EnsureCleanSlate(ctx)
		})

		AfterEach(func(ctx context.Context) {
			fixture.OutputDebugOnFail(ctx)
			fixture.CheckPageErrors()
		})

		It("imports a YAML file into the local cluster", fixture.Case(108), func(ctx context.Context) {
			s := fixture.Current()
			c := s.Commands
			cluster := s.Config.ClusterName

			Expect(c.ImportYaml(ctx, cluster, helmServerManifest)).To(Succeed())
			Expect(c.CheckApplicationStatus(ctx, "helm-", cluster)).To(Succeed())
			Expect(c.DeleteApplicationDeployment(ctx, cluster)).To(Succeed())
		})
	})
})
