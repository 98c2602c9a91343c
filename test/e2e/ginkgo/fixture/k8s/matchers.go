package k8s

import (
	"context"

	//lint:ignore ST1001 "This is a common practice in Gomega tests for readability."
	. "github.com/onsi/ginkgo/v2" //nolint:all
	//lint:ignore ST1001 "This is a common practice in Gomega tests for readability."
	. "github.com/onsi/gomega" //nolint:all

	matcher "github.com/onsi/gomega/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// GitRepo polls the state of a GitRepo, for use with Eventually.
func GitRepo(ctx context.Context, c client.Client, ns, name string) func() (GitRepoState, error) {
	return func() (GitRepoState, error) {
		return GetGitRepo(ctx, c, ns, name)
	}
}

// HaveReadyBundles expects desired bundles to be ready and to number n.
func HaveReadyBundles(n int64) matcher.GomegaMatcher {
	return fetchGitRepoState(func(s GitRepoState) bool {
		GinkgoWriter.Println("GitRepo", s.String())
		return s.DesiredReady == n && s.ReadyBundles == n
	})
}

// BeReady expects the Ready condition of the GitRepo to be True.
func BeReady() matcher.GomegaMatcher {
	return fetchGitRepoState(func(s GitRepoState) bool {
		if !s.Ready {
			GinkgoWriter.Println("GitRepo", s.Namespace+"/"+s.Name, "is not ready:", s.ReadyMessage)
		}
		return s.Ready
	})
}

func fetchGitRepoState(f func(GitRepoState) bool) matcher.GomegaMatcher {
	return WithTransform(func(s GitRepoState) bool {
		return f(s)
	}, BeTrue())
}
