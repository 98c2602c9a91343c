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
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture"
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/commands"
)

var _ = Describe("Fleet UI Sequential E2E Tests", Label("p1"), func() {

	Context("FLEET-69_keep_resources_after_gitrepo_deletion", func() {

		BeforeEach(func(ctx context.Context) {
			fixture.EnsureCleanSlate(ctx)
		})

		AfterEach(func(ctx context.Context) {
			fixture.OutputDebugOnFail(ctx, commands.WorkspaceLocal)
			fixture.CheckPageErrors()
		})

		DescribeTable("deletes or keeps the deployed resources together with the GitRepo",
			func(ctx context.Context, id int, keep commands.Toggle) {
				s := fixture.Current()
				c := s.Commands
				cluster := s.Config.ClusterName
				repoName := "local-cluster-fleet-" + strconv.Itoa(id)

				Expect(c.AddOrEditGitRepo(ctx, commands.GitRepoConfig{
					Name:          repoName,
					URL:           testDataRepo,
					Branch:        testDataBranch,
					Path:          nginxPath,
					KeepResources: keep,
					Workspace:     commands.WorkspaceLocal,
				})).To(Succeed())
				Expect(c.ClickButton(ctx, "Create")).To(Succeed())
				Expect(c.CheckGitRepoStatus(ctx, repoName, "1 / 1", "1 / 1")).To(Succeed())
				Expect(c.CheckApplicationStatus(ctx, nginxApp, cluster)).To(Succeed())

				By("deleting the GitRepo")
				Expect(c.DeleteAllFleetRepos(ctx)).To(Succeed())

				if keep == commands.ToggleYes {
					By("expecting the application to be kept")
					Expect(c.CheckApplicationStatus(ctx, nginxApp, cluster)).To(Succeed())
					Expect(c.DeleteApplicationDeployment(ctx, cluster)).To(Succeed())
				} else {
					By("expecting the application to be removed")
					Expect(c.CheckApplicationAbsent(ctx, nginxApp, cluster)).To(Succeed())
				}
			},
			Entry("resources are kept when keepResources is set", fixture.Case(69), 69, commands.ToggleYes),
			Entry("resources are deleted when keepResources is not set", fixture.Case(70), 70, commands.ToggleNo),
		)

		It("keeps resources after keepResources is enabled on an existing GitRepo", fixture.Case(71), func(ctx context.Context) {
			s := fixture.Current()
			c := s.Commands
			cluster := s.Config.ClusterName
			repo := commands.GitRepoConfig{
				Name:      "local-cluster-keep-71",
				URL:       testDataRepo,
				Branch:    testDataBranch,
				Path:      nginxPath,
				Workspace: commands.WorkspaceLocal,
			}

			Expect(c.AddOrEditGitRepo(ctx, repo)).To(Succeed())
			Expect(c.ClickButton(ctx, "Create")).To(Succeed())
			Expect(c.CheckGitRepoStatus(ctx, repo.Name, "1 / 1", "1 / 1")).To(Succeed())
			Expect(c.CheckApplicationStatus(ctx, nginxApp, cluster)).To(Succeed())

			By("enabling keepResources on the existing GitRepo")
			Expect(c.AddOrEditGitRepo(ctx, commands.GitRepoConfig{
				Name:          repo.Name,
				KeepResources: commands.ToggleYes,
				Workspace:     commands.WorkspaceLocal,
				EditMode:      true,
			})).To(Succeed())
			Expect(c.ClickButton(ctx, "Save")).To(Succeed())
			Expect(c.ForceUpdate(ctx, repo.Name)).To(Succeed())
			Expect(c.CheckGitRepoStatus(ctx, repo.Name, "1 / 1", "1 / 1")).To(Succeed())

			By("deleting the GitRepo and expecting the application to be kept")
			Expect(c.DeleteAllFleetRepos(ctx)).To(Succeed())
			Expect(c.CheckApplicationStatus(ctx, nginxApp, cluster)).To(Succeed())
			Expect(c.DeleteApplicationDeployment(ctx, cluster)).To(Succeed())
		})
	})
})
