package model_test

import (
	"testing"

	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteClusterService_Hooks(t *testing.T) {
	service := &model.RemoteClusterService{
		ID:   7,
		Name: "HDFS{2.7.0}",
		Properties: model.RemoteClusterProperties{
			"webhdfs.url":     "webhdfs://namenode:50070",
			"dfs.replication": "3",
		},
	}

	require.NoError(t, service.BeforeSave(nil))

	require.Len(t, service.GormProperties, 2)
	assert.Equal(t, "dfs.replication", service.GormProperties[0].Name)
	assert.Equal(t, uint(7), service.GormProperties[0].RemoteClusterServiceID)
	assert.Equal(t, "webhdfs.url", service.GormProperties[1].Name)

	found := &model.RemoteClusterService{GormProperties: service.GormProperties}
	require.NoError(t, found.AfterFind(nil))

	assert.Equal(t, service.Properties, found.Properties)
}

func TestRemoteCluster_FindService(t *testing.T) {
	cluster := model.RemoteCluster{
		Name: "cluster1",
		Services: []model.RemoteClusterService{
			{Name: "HDFS{2.7.0}"},
			{Name: "YARN{2.7.0}"},
		},
	}

	service, ok := cluster.FindService("YARN{2.7.0}")
	assert.True(t, ok)
	assert.Equal(t, "YARN{2.7.0}", service.Name)

	_, ok = cluster.FindService("ZK")
	assert.False(t, ok)

	assert.Equal(t, []string{"HDFS{2.7.0}", "YARN{2.7.0}"}, cluster.ServiceNames())
}

func TestView_Hooks(t *testing.T) {
	view := &model.View{Name: "FILES", Services: []string{"HDFS{2.7.0}", "ZK"}}

	require.NoError(t, view.BeforeSave(nil))

	assert.Equal(t, []model.ViewServiceMapping{
		{ViewName: "FILES", ServiceName: "HDFS{2.7.0}", Position: 0},
		{ViewName: "FILES", ServiceName: "ZK", Position: 1},
	}, view.Mappings)

	found := &model.View{Name: "FILES", Mappings: view.Mappings}
	require.NoError(t, found.AfterFind(nil))

	assert.Equal(t, []string{"HDFS{2.7.0}", "ZK"}, found.Services)
}

func TestServiceName(t *testing.T) {
	assert.Equal(t, "HDFS{2.7.0}", model.ServiceName("HDFS", "2.7.0"))
	assert.Equal(t, "ZK", model.ServiceName("ZK", ""))
}
