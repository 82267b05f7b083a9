package capn

// Close shuts down the current transport, if any. It is idempotent: a
// second call on an already-closed Client is a no-op, and observable
// state (conn == nil, feedbackFlag == false) is identical either way.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.feedbackFlag = false
	if err != nil {
		return newError(ErrConnectionClosed, err)
	}
	return nil
}
