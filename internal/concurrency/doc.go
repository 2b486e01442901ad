// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker-pool executor for running channel sessions concurrently. Each
// submitted task owns its channels for the duration of the call.
package concurrency
