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
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/k8s"
)

var _ = Describe("Fleet UI Sequential E2E Tests", Label("p0"), func() {

	Context("FLEET-62_deploy_application_to_local_cluster", func() {

		BeforeEach(func(ctx context.Context) {
			fixture.EnsureLoggedIn(ctx)
		})

		AfterEach(func(ctx context.Context) {
			fixture.OutputDebugOnFail(ctx, commands.WorkspaceLocal)
			fixture.CheckPageErrors()
		})

		It("deploys the simple example to the local cluster and removes it again", fixture.Case(62), func(ctx context.Context) {
			s := fixture.Current()
			c := s.Commands

			repo := commands.GitRepoConfig{
				Name:      "local-cluster-fleet-62",
				URL:       "https://github.com/rancher/fleet-examples",
				Branch:    "master",
				Path:      "simple",
				Workspace: commands.WorkspaceLocal,
			}

			By("registering the repository in fleet-local")
			Expect(c.AddOrEditGitRepo(ctx, repo)).To(Succeed())
			Expect(c.ClickButton(ctx, "Create")).To(Succeed())
			Expect(c.VerifyTableRow(ctx, 0, repo.Name, nil)).To(Succeed())

			By("forcing an update and waiting for the bundle to be ready")
			Expect(c.ForceUpdate(ctx, repo.Name)).To(Succeed())
			Expect(c.CheckGitRepoStatus(ctx, repo.Name, "1 / 1", "6 / 6")).To(Succeed())
			Expect(c.CheckGitRepoResources(ctx, "frontend", "redis-master", "redis-slave")).To(Succeed())
			Expect(c.CheckTextAbsent(ctx, "already exists")).To(Succeed())

			if s.Kube != nil {
				By("verifying the GitRepo status reported by the cluster")
				Eventually(k8s.GitRepo(ctx, s.Kube.Client, commands.WorkspaceLocal, repo.Name), "3m", "5s").Should(k8s.HaveReadyBundles(1))
				Eventually(k8s.GitRepo(ctx, s.Kube.Client, commands.WorkspaceLocal, repo.Name), "3m", "5s").Should(k8s.BeReady())
			}

			By("deleting the repository")
			Expect(c.OpenGitRepos(ctx, commands.WorkspaceLocal)).To(Succeed())
			Expect(c.VerifyTableRow(ctx, 0, repo.Name, nil)).To(Succeed())
			Expect(c.DeleteAll(ctx, commands.EmptyGitRepos)).To(Succeed())
			Expect(c.CheckTextVisible(ctx, "No repositories have been added")).To(Succeed())
		})
	})
})
