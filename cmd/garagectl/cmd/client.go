package cmd

import (
	"github.com/zexi/garage-status/pkg/client"
)

// statusClient is shared by all subcommands
var statusClient *client.Client

func getClient() *client.Client {
	if statusClient == nil {
		statusClient = client.NewClient(endpoint, timeout)
	}
	return statusClient
}
