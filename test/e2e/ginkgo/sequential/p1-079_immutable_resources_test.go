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

	Context("FLEET-79_correct_drift_on_immutable_resources", func() {

		BeforeEach(func(ctx context.Context) {
			fixture.EnsureCleanSlate(ctx)
		})

		AfterEach(func(ctx context.Context) {
			fixture.OutputDebugOnFail(ctx, commands.WorkspaceDefault)
			fixture.CheckPageErrors()
		})

		DescribeTable("does not self-heal modified immutable resources",
			func(ctx context.Context, id int, location, listName, namespace string, edit commands.ResourceEdit, want string) {
				s := fixture.Current()
				c := s.Commands
				repoName := "local-cluster-correct-" + strconv.Itoa(id)

				Expect(c.AddOrEditGitRepo(ctx, commands.GitRepoConfig{
					Name:         repoName,
					URL:          testDataRepo,
					Branch:       testDataBranch,
					Path:         "multiple-paths",
					CorrectDrift: commands.ToggleYes,
					Workspace:    commands.WorkspaceDefault,
				})).To(Succeed())
				Expect(c.ClickButton(ctx, "Create")).To(Succeed())
				Expect(c.CheckGitRepoStatus(ctx, repoName, "2 / 2", "2 / 2")).To(Succeed())

				By("editing " + edit.Name)
				Expect(c.AccessMenuSelection(ctx, s.Config.DownstreamClusterName, location, listName)).To(Succeed())
				Expect(c.NamespaceToggle(ctx, namespace)).To(Succeed())
				Expect(c.FilterInSearchBox(ctx, edit.Name)).To(Succeed())
				Expect(c.EditResource(ctx, edit)).To(Succeed())

				By("expecting the modification to be kept")
				Expect(c.FilterInSearchBox(ctx, edit.Name)).To(Succeed())
				Expect(c.VerifyTableRow(ctx, 0, edit.Name, commands.Contains(want))).To(Succeed())

				Expect(c.DeleteAllFleetRepos(ctx)).To(Succeed())
			},
			Entry("ConfigMap", fixture.Case(80), 80, "Storage", "ConfigMaps", "test-fleet-mp-config",
				commands.ResourceEdit{Kind: commands.ResourceConfigMap, Name: "mp-app-config", Key: "test_key", Value: "test_data_value"},
				"test, test_key"),
			Entry("Service", fixture.Case(79), 79, "Service Discovery", "Services", "test-fleet-mp-service",
				commands.ResourceEdit{Kind: commands.ResourceService, Name: "mp-app-service", Port: 6341},
				"6341"),
		)
	})
})
