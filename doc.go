// Package singlebase is a Go client for the Singlebase cloud API.
//
// A Client posts operation payloads to one project endpoint and returns
// every outcome as a *Result; it never panics and never returns a transport
// error directly. Upload helpers send local files to presigned URLs.
//
// Basic usage:
//
//	client, err := singlebase.New(singlebase.Config{
//	    APIKey:      os.Getenv("SINGLEBASE_API_KEY"),
//	    EndpointKey: "my-project",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res := client.Call(ctx, singlebase.Payload{"op": "db.find", "collection": "users"}, nil, "")
//	if err := res.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
//	name, _ := res.Get("user.name", "")
//	fmt.Println(name)
//
// Async calls deliver exactly one Result on the returned channel:
//
//	res := <-client.CallAsync(ctx, payload, nil, "")
package singlebase
