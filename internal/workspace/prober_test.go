package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/databricks/databricks-sdk-go/service/compute"
	"github.com/databricks/databricks-sdk-go/service/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djlord-it/checkerhub/internal/testutil"
)

type fakeClusters struct {
	details *compute.ClusterDetails
	err     error
	asked   string
}

func (f *fakeClusters) Get(_ context.Context, req compute.GetClusterRequest) (*compute.ClusterDetails, error) {
	f.asked = req.ClusterId
	return f.details, f.err
}

type fakeObjects struct {
	info  *workspace.ObjectInfo
	err   error
	asked string
}

func (f *fakeObjects) GetStatusByPath(_ context.Context, path string) (*workspace.ObjectInfo, error) {
	f.asked = path
	return f.info, f.err
}

func newTestProber(c *fakeClusters, o *fakeObjects) *Prober {
	log, _ := testutil.NullLogger()
	return &Prober{clusters: c, objects: o, log: log}
}

func runningCluster() *fakeClusters {
	return &fakeClusters{details: &compute.ClusterDetails{
		ClusterName: "dq-shared",
		State:       compute.StateRunning,
	}}
}

func TestProbe_AllPresent(t *testing.T) {
	clusters := runningCluster()
	objects := &fakeObjects{info: &workspace.ObjectInfo{
		ObjectType: workspace.ObjectTypeNotebook,
		Language:   workspace.LanguagePython,
	}}

	report, err := newTestProber(clusters, objects).Probe(testutil.TestContext(t), "0115-abc", "/Repos/dq/checker")
	require.NoError(t, err)

	assert.Equal(t, "0115-abc", clusters.asked)
	assert.Equal(t, "/Repos/dq/checker", objects.asked)
	assert.Equal(t, Report{
		ClusterID:    "0115-abc",
		ClusterName:  "dq-shared",
		ClusterState: "RUNNING",
		NotebookPath: "/Repos/dq/checker",
		Language:     "PYTHON",
	}, report)
}

func TestProbe_ClusterMissing(t *testing.T) {
	clusters := &fakeClusters{err: errors.New("Cluster 0115-abc does not exist")}
	objects := &fakeObjects{}

	_, err := newTestProber(clusters, objects).Probe(testutil.TestContext(t), "0115-abc", "/Repos/dq/checker")
	require.ErrorIs(t, err, ErrClusterNotFound)
	assert.Empty(t, objects.asked, "notebook lookup should be skipped")
}

func TestProbe_ClusterLookupFails(t *testing.T) {
	clusters := &fakeClusters{err: errors.New("invalid access token")}

	_, err := newTestProber(clusters, &fakeObjects{}).Probe(testutil.TestContext(t), "c", "/n")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrClusterNotFound)
	assert.Contains(t, err.Error(), "get cluster")
}

func TestProbe_NotebookMissing(t *testing.T) {
	objects := &fakeObjects{err: errors.New("Path (/Repos/dq/checker) does not exist.")}

	report, err := newTestProber(runningCluster(), objects).Probe(testutil.TestContext(t), "c", "/Repos/dq/checker")
	require.ErrorIs(t, err, ErrNotebookNotFound)
	assert.Equal(t, "RUNNING", report.ClusterState)
}

func TestProbe_PathIsDirectory(t *testing.T) {
	objects := &fakeObjects{info: &workspace.ObjectInfo{ObjectType: workspace.ObjectTypeDirectory}}

	_, err := newTestProber(runningCluster(), objects).Probe(testutil.TestContext(t), "c", "/Repos/dq")
	require.ErrorIs(t, err, ErrNotANotebook)
}
