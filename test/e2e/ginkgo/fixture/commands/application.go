package commands

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"
)

// ResourceKind selects which editor EditResource drives.
type ResourceKind string

const (
	ResourceConfigMap ResourceKind = "ConfigMap"
	ResourceService   ResourceKind = "Service"
)

// ResourceEdit is a change made to a deployed resource through its Edit Config form.
type ResourceEdit struct {
	Kind ResourceKind
	Name string

	// Key and Value are appended as a new ConfigMap data entry.
	Key   string
	Value string
	// Port replaces the first Service port.
	Port int
}

// Validate rejects edits the form cannot express.
func (e ResourceEdit) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("resource name is required")
	}
	switch e.Kind {
	case ResourceConfigMap:
		if e.Key == "" {
			return fmt.Errorf("configmap %s: key is required", e.Name)
		}
	case ResourceService:
		if e.Port <= 0 || e.Port > 65535 {
			return fmt.Errorf("service %s: invalid port %d", e.Name, e.Port)
		}
	default:
		return fmt.Errorf("resource %s: editing %q is not supported", e.Name, e.Kind)
	}
	return nil
}

// openDeployments navigates to the Deployments list of cluster.
func (c *Commands) openDeployments(ctx context.Context, cluster string) error {
	if err := c.BurgerMenuToggle(ctx); err != nil {
		return err
	}
	if err := c.AccessMenu(ctx, cluster); err != nil {
		return err
	}
	return c.ClickNavMenu(ctx, menuWorkloads, menuDeployments)
}

// CheckApplicationStatus waits until a deployment whose name contains appName is listed on cluster.
// Its state is not checked, the deployment may still be rolling out.
func (c *Commands) CheckApplicationStatus(ctx context.Context, appName, cluster string) error {
	c.log.Info("checking application", "app", appName, "cluster", cluster)

	if err := c.openDeployments(ctx, cluster); err != nil {
		return err
	}
	if err := c.FilterInSearchBox(ctx, appName); err != nil {
		return err
	}
	return c.verifyTableRow(ctx, 0, c.timeouts.Content, Contains(appName))
}

// CheckApplicationAbsent waits until no deployment whose name contains appName is listed on cluster.
func (c *Commands) CheckApplicationAbsent(ctx context.Context, appName, cluster string) error {
	if err := c.openDeployments(ctx, cluster); err != nil {
		return err
	}
	if err := c.FilterInSearchBox(ctx, appName); err != nil {
		return err
	}
	return c.shouldNotExist(ctx, rowNamed(appName), c.timeouts.Content)
}

// ModifyDeployedApplication scales a deployment on cluster to two replicas, creating drift from
// what the GitRepo declares.
func (c *Commands) ModifyDeployedApplication(ctx context.Context, appName, cluster string) error {
	c.log.Info("scaling application", "app", appName, "cluster", cluster)

	if err := c.openDeployments(ctx, cluster); err != nil {
		return err
	}
	if err := c.FilterInSearchBox(ctx, appName); err != nil {
		return err
	}
	if err := c.Open3dotsMenu(ctx, appName, textEditConfig, false); err != nil {
		return err
	}
	if err := c.TypeValue(ctx, "Replicas", "2"); err != nil {
		return err
	}
	if err := c.ClickButton(ctx, "Save"); err != nil {
		return err
	}
	return c.shouldBeVisible(ctx, rowNamed(appName), c.timeouts.Content)
}

// DeleteApplicationDeployment removes every deployment listed on cluster.
func (c *Commands) DeleteApplicationDeployment(ctx context.Context, cluster string) error {
	if err := c.openDeployments(ctx, cluster); err != nil {
		return err
	}
	return c.DeleteAll(ctx, EmptyRows)
}

// ImportYaml uploads a manifest file to cluster through the Import YAML dialog.
func (c *Commands) ImportYaml(ctx context.Context, cluster, path string) error {
	if err := ValidateManifest(path); err != nil {
		return err
	}

	c.log.Info("importing yaml", "cluster", cluster, "file", path)

	if err := c.BurgerMenuToggle(ctx); err != nil {
		return err
	}
	if err := c.AccessMenu(ctx, cluster); err != nil {
		return err
	}
	if err := c.click(ctx, importYamlButton, c.timeouts.Menu); err != nil {
		return err
	}
	if err := c.shouldBeVisible(ctx, importYamlTitle, c.timeouts.Command); err != nil {
		return err
	}
	if err := c.shouldExist(ctx, importYamlFile, c.timeouts.Command); err != nil {
		return err
	}
	if err := c.driver.SetInputFile(ctx, importYamlFile, path); err != nil {
		return err
	}
	if err := c.click(ctx, importYamlImport, c.timeouts.Command); err != nil {
		return err
	}
	// Close only shows once every object was applied.
	return c.click(ctx, importYamlClose, c.timeouts.Content)
}

// ValidateManifest checks that every document of a YAML file names a kind and a metadata.name.
func ValidateManifest(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to read manifest: %w", err)
	}
	defer f.Close()

	reader := utilyaml.NewYAMLReader(bufio.NewReader(f))
	objects := 0
	for i := 0; ; i++ {
		doc, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("manifest %s document %d: %w", path, i, err)
		}
		if len(bytes.TrimSpace(doc)) == 0 {
			continue
		}

		var obj struct {
			Kind     string `json:"kind"`
			Metadata struct {
				Name string `json:"name"`
			} `json:"metadata"`
		}
		if err := yaml.Unmarshal(doc, &obj); err != nil {
			return fmt.Errorf("manifest %s document %d: %w", path, i, err)
		}
		// comment-only documents decode to nothing
		if obj.Kind == "" && obj.Metadata.Name == "" && isCommentOnly(doc) {
			continue
		}
		if obj.Kind == "" || obj.Metadata.Name == "" {
			return fmt.Errorf("manifest %s document %d: kind and metadata.name are required", path, i)
		}
		objects++
	}

	if objects == 0 {
		return fmt.Errorf("manifest %s holds no objects", path)
	}
	return nil
}

func isCommentOnly(doc []byte) bool {
	for _, line := range bytes.Split(doc, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) > 0 && line[0] != '#' && !bytes.Equal(line, []byte("---")) {
			return false
		}
	}
	return true
}

// OpenResourceDetail opens the detail page of the listed resource name.
func (c *Commands) OpenResourceDetail(ctx context.Context, name string) error {
	return c.click(ctx, detailLink.WithText(name), c.timeouts.Content)
}

// CheckResourceData waits until the data section of an open detail page contains every part.
func (c *Commands) CheckResourceData(ctx context.Context, parts ...string) error {
	var ms []TextMatcher
	for _, p := range parts {
		ms = append(ms, Contains(p))
	}
	return c.shouldHaveText(ctx, dataSection, allOf(ms...), c.timeouts.Content)
}

// EditResource changes a listed resource through Edit Config and saves it. The list must already be
// filtered to the resource.
func (c *Commands) EditResource(ctx context.Context, edit ResourceEdit) error {
	if err := edit.Validate(); err != nil {
		return err
	}

	c.log.Info("editing resource", "kind", edit.Kind, "name", edit.Name)

	if err := c.shouldBeVisible(ctx, detailLink.WithText(edit.Name), c.timeouts.Content); err != nil {
		return err
	}
	if err := c.Open3dotsMenu(ctx, edit.Name, textEditConfig, false); err != nil {
		return err
	}

	switch edit.Kind {
	case ResourceConfigMap:
		// Existing data occupies row 0 of the key/value editor.
		if err := c.ClickButton(ctx, "Add"); err != nil {
			return err
		}
		if err := c.fill(ctx, keyValueKey(1), edit.Key); err != nil {
			return err
		}
		if err := c.typeCode(ctx, codeMirror.Nth(1), edit.Value); err != nil {
			return err
		}
	case ResourceService:
		if err := c.fill(ctx, servicePortInput, strconv.Itoa(edit.Port)); err != nil {
			return err
		}
	}

	if err := c.Wait(ctx, 500*time.Millisecond); err != nil {
		return err
	}
	if err := c.ClickButton(ctx, "Save"); err != nil {
		return err
	}
	return c.shouldNotExist(ctx, formFooter, c.timeouts.Content)
}
