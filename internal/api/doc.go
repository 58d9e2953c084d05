// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts HTTP to the study, session, analysis and
// category services: handlers parse paths, queries and bodies, call one
// service method and translate the result or error into a response.
package api
