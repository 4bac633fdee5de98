package dto

import "vtds-application-vshasta/internal/core/domain"

type NodeRefResponse struct {
	Class    string `json:"class"`
	Instance int    `json:"instance"`
}

type XNameMapResponse struct {
	XNames map[string]NodeRefResponse `json:"xnames"`
}

func ToXNameMapResponse(xnames map[string]domain.NodeRef) XNameMapResponse {
	out := XNameMapResponse{XNames: make(map[string]NodeRefResponse, len(xnames))}
	for xname, ref := range xnames {
		out.XNames[xname] = NodeRefResponse{Class: ref.Class, Instance: ref.Instance}
	}
	return out
}

type HostMapResponse struct {
	Hosts map[string]string `json:"hosts"`
}

type VerifyCSMResponse struct {
	Nodes []domain.CSMNodeStatus `json:"nodes"`
	Ready bool                   `json:"ready"`
}

func ToVerifyCSMResponse(nodes []domain.CSMNodeStatus) VerifyCSMResponse {
	resp := VerifyCSMResponse{Nodes: nodes, Ready: len(nodes) > 0}
	for _, node := range nodes {
		if !node.Ready {
			resp.Ready = false
			break
		}
	}
	return resp
}
