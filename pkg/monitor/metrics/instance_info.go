// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	instanceInfoMetricName = "horizon_instance_info"
	instanceInfoHelp       = "Build and ownership metadata of this horizon instance. Always 1."
)

// metadataLabels are the metadata keys exposed as labels of the instance info metric.
var metadataLabels = []string{"team_name", "team_email", "platform"}

// RegisterInstanceInfo registers the horizon_instance_info metric on the registry.
// Keys of metadata that are not in [metadataLabels] are ignored, missing keys are empty labels.
func RegisterInstanceInfo(registry *prometheus.Registry, instanceName string, metadata map[string]string) error {
	labels := append([]string{"instance_name", "version"}, metadataLabels...)
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: instanceInfoMetricName,
			Help: instanceInfoHelp,
		},
		labels,
	)

	values := prometheus.Labels{"instance_name": instanceName, "version": version()}
	for _, k := range metadataLabels {
		values[k] = metadata[k]
	}
	info.With(values).Set(1)
	return registry.Register(info)
}
