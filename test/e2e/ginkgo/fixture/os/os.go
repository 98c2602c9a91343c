package os

import (
	"context"
	"os/exec"

	. "github.com/onsi/ginkgo/v2"
)

// ExecCommandWithOutputParam runs a command and returns its combined output. With printOutput the
// output is echoed to GinkgoWriter; leave it off for output that is reported elsewhere or that carries
// credentials.
func ExecCommandWithOutputParam(ctx context.Context, printOutput bool, cmdArgs ...string) (string, error) {
	GinkgoWriter.Println("executing command:", cmdArgs)

	cmd := exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)

	outputBytes, err := cmd.CombinedOutput()

	output := string(outputBytes)

	if printOutput {
		GinkgoWriter.Println(output)
	}

	return output, err
}

// Kubectl runs kubectl against kubeconfig without echoing its output.
func Kubectl(ctx context.Context, kubeconfig string, args ...string) (string, error) {
	cmdArgs := append([]string{"kubectl", "--kubeconfig", kubeconfig}, args...)
	return ExecCommandWithOutputParam(ctx, false, cmdArgs...)
}
