// Package fluentdforward provides a sink to forward log items to fluentd by its "Forward" protocol, split into:
//
// - eventEncoder encodes log items into msgpack formatted events one by one
//
// - messageEncoder joins and optionally compresses events into Forward messages, one for each chunk
//
// - Sink sends out the messages to upstream fluentd and waits for their ACKs, connecting on demand
package fluentdforward
