/*
Package server exposes a directory.Service over HTTP.

Contact operations are huma operations on a chi router, mounted under the configured API prefix.
Liveness, readiness and Prometheus metrics are served next to them.

Basic example:

	service := directory.NewService(&memory.ContactStore{})
	s := server.New(service, cfg).WithLogger(logger)
	s.AttachDefaultMiddleware()
	s.RegisterRoutes()
	log.Fatal(s.Start(ctx, nil))

Middleware has to be attached before RegisterRoutes is called.
*/
package server
