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
	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/naming"
)

var _ = Describe("Fleet UI Sequential E2E Tests", Label("p1"), func() {

	Context("FLEET-103_gitrepo_name_validation_and_bundle_name_trimming", func() {

		BeforeEach(func(ctx context.Context) {
			fixture.EnsureCleanSlate(ctx)
		})

		AfterEach(func(ctx context.Context) {
			fixture.OutputDebugOnFail(ctx, commands.WorkspaceLocal)
			fixture.CheckPageErrors()
		})

		DescribeTable("keeps bundle names of long repo names within the length cap",
			func(ctx context.Context, repoName string) {
				c := fixture.Current().Commands
				Expect(naming.IsValidGitRepoName(repoName)).To(BeTrue())

				By("creating the repo " + repoName)
				Expect(c.AddOrEditGitRepo(ctx, commands.GitRepoConfig{
					Name:      repoName,
					URL:       testDataRepo,
					Branch:    testDataBranch,
					Path:      nginxPath,
					Workspace: commands.WorkspaceLocal,
				})).To(Succeed())
				Expect(c.ClickButton(ctx, "Create")).To(Succeed())
				Expect(c.VerifyTableRow(ctx, 0, "Active", commands.Contains(repoName))).To(Succeed())

				By("checking the bundle name on the Bundles list")
				Expect(c.AccessMenuSelection(ctx, "Continuous Delivery", "Advanced", "Bundles")).To(Succeed())
				// Row 0 is the fleet-agent bundle of the local cluster.
				Expect(c.CheckBundleNameTrimmed(ctx, 1, repoName)).To(Succeed())

				if kube := fixture.Current().Kube; kube != nil {
					By("checking every bundle of the repo on the cluster")
					Eventually(func() ([]string, error) {
						return k8s.ListBundleNames(ctx, kube.Client, commands.WorkspaceLocal, repoName)
					}).Should(And(Not(BeEmpty()), HaveEach(Satisfy(func(name string) bool {
						return naming.IsTrimmedBundleName(name, repoName)
					}))))
				}

				Expect(c.CheckApplicationStatus(ctx, nginxApp, fixture.Current().Config.ClusterName)).To(Succeed())
				Expect(c.DeleteAllFleetRepos(ctx)).To(Succeed())
			},
			Entry("47 characters long is not trimmed, the path suffix fills it up to 53", fixture.Case(103),
				"test-test-test-test-test-test-test-test-test-t"),
			Entry("59 characters long is trimmed to 53", fixture.Case(104),
				"test-test-test-test-test-test-test-test-test-test-test-test"),
			Entry("54 characters long is trimmed to 53", fixture.Case(106),
				"test-test-test-test-123-456-789-0--test-test-test-test"),
		)

		DescribeTable("rejects invalid repo names and creates nothing",
			func(ctx context.Context, repoName string) {
				c := fixture.Current().Commands
				Expect(naming.IsValidGitRepoName(repoName)).To(BeFalse())

				Expect(c.AddOrEditGitRepo(ctx, commands.GitRepoConfig{
					Name:   repoName,
					URL:    testDataRepo,
					Branch: testDataBranch,
					Path:   nginxPath,
				})).To(Succeed())
				Expect(c.ClickButton(ctx, "Create")).To(Succeed())

				By("expecting the RFC 1123 error banner")
				Expect(c.CheckErrorBanner(ctx, repoName, "RFC 1123")).To(Succeed())

				By("going back to the empty list")
				Expect(c.ClickButton(ctx, "Cancel")).To(Succeed())
				Expect(c.CheckTextVisible(ctx, "No repositories have been added")).To(Succeed())
			},
			Entry("invalid and normal characters", fixture.Case(105), "Test.1-repo-local-cluster"),
			Entry("invalid and special characters", fixture.Case(61), "ryhhskh-123456789+-+abdhg%^/"),
		)
	})
})
