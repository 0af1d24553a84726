package remotecluster

import "github.com/dhis2-sre/im-remote-cluster/pkg/model"

// swagger:parameters createRemoteCluster
type _ struct {
	// Remote cluster to create
	// in: body
	// required: true
	Body CreateRemoteClusterRequest
}

// swagger:parameters updateRemoteCluster
type _ struct {
	// Name of the remote cluster
	// in: path
	// required: true
	Name string `json:"name"`

	// Services replacing the ones of the remote cluster
	// in: body
	// required: true
	Body UpdateRemoteClusterRequest
}

// swagger:parameters findRemoteCluster deleteRemoteCluster
type _ struct {
	// Name of the remote cluster
	// in: path
	// required: true
	Name string `json:"name"`
}

// swagger:response RemoteClusters
type _ struct {
	// in: body
	Body []model.RemoteCluster
}
