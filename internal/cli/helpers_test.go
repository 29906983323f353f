package cli

import "github.com/pendergraft/kontocheck/pkg/client"

func (r checkRequest) toClient() client.Request {
	return client.Request{Method: r.method, Account: r.account, Bank: r.bank}
}

func clientChecks(method string, limit int) client.ListChecksOptions {
	return client.ListChecksOptions{Method: method, Limit: limit}
}
