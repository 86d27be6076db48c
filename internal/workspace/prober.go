// Package workspace checks that the cluster and notebook a checker job
// depends on exist in the Databricks workspace.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/databricks/databricks-sdk-go"
	"github.com/databricks/databricks-sdk-go/apierr"
	"github.com/databricks/databricks-sdk-go/service/compute"
	"github.com/databricks/databricks-sdk-go/service/workspace"
	"github.com/sirupsen/logrus"
)

var (
	ErrClusterNotFound  = errors.New("cluster does not exist")
	ErrNotebookNotFound = errors.New("notebook does not exist")
	ErrNotANotebook     = errors.New("path is not a notebook")
)

type clusterGetter interface {
	Get(ctx context.Context, request compute.GetClusterRequest) (*compute.ClusterDetails, error)
}

type pathStatter interface {
	GetStatusByPath(ctx context.Context, path string) (*workspace.ObjectInfo, error)
}

// Report describes what was found.
type Report struct {
	ClusterID    string `json:"cluster_id"`
	ClusterName  string `json:"cluster_name"`
	ClusterState string `json:"cluster_state"`
	NotebookPath string `json:"notebook_path"`
	Language     string `json:"notebook_language"`
}

type Prober struct {
	clusters clusterGetter
	objects  pathStatter
	log      logrus.FieldLogger
}

// NewProber builds a Prober over a workspace client authenticated with a personal access token.
func NewProber(host, token string, log logrus.FieldLogger) (*Prober, error) {
	w, err := databricks.NewWorkspaceClient(&databricks.Config{
		Host:  host,
		Token: token,
	})
	if err != nil {
		return nil, fmt.Errorf("workspace client: %w", err)
	}
	return &Prober{clusters: w.Clusters, objects: w.Workspace, log: log}, nil
}

// Probe returns ErrClusterNotFound, ErrNotebookNotFound or ErrNotANotebook
// when the job target is missing; other errors come from the workspace API.
func (p *Prober) Probe(ctx context.Context, clusterID, notebookPath string) (Report, error) {
	report := Report{ClusterID: clusterID, NotebookPath: notebookPath}

	cluster, err := p.clusters.Get(ctx, compute.GetClusterRequest{ClusterId: clusterID})
	if err != nil {
		if isNotFound(err) {
			return report, fmt.Errorf("%w: %s", ErrClusterNotFound, clusterID)
		}
		return report, fmt.Errorf("get cluster: %w", err)
	}
	report.ClusterName = cluster.ClusterName
	report.ClusterState = string(cluster.State)
	p.log.Debugf("workspace: cluster %s is %s", clusterID, cluster.State)

	obj, err := p.objects.GetStatusByPath(ctx, notebookPath)
	if err != nil {
		if isNotFound(err) {
			return report, fmt.Errorf("%w: %s", ErrNotebookNotFound, notebookPath)
		}
		return report, fmt.Errorf("get notebook status: %w", err)
	}
	if obj.ObjectType != workspace.ObjectTypeNotebook {
		return report, fmt.Errorf("%w: %s is %s", ErrNotANotebook, notebookPath, obj.ObjectType)
	}
	report.Language = string(obj.Language)

	return report, nil
}

func isNotFound(err error) bool {
	if errors.Is(err, apierr.ErrResourceDoesNotExist) || errors.Is(err, apierr.ErrNotFound) {
		return true
	}
	return strings.Contains(err.Error(), "does not exist")
}
