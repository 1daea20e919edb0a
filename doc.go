/*
Package romfs packages named byte blobs into a single read-only container
(a "ROM") which can be embedded in a program and queried by path at
runtime, without filesystem access.

Data Structure Documentation

Artifact

An artifact is a 3-byte ASCII tag followed by a payload. The tag selects
the transforms that were applied to the raw stream.

    Artifact layout:
    +-----------------+-------------------------------+
    | tag (3 bytes)   | payload (transform dependent) |
    +-----------------+-------------------------------+

    Tags:
    ASC  payload is the raw stream
    BIN  payload is the zlib-deflated raw stream
    ENC  payload is the deflated raw stream, encrypted with AES-256-CBC
    AGE  payload is the deflated raw stream, sealed with age (scrypt)

ENC artifacts use a key derived as SHA-256(passphrase) and a fixed
initialisation vector. Before encryption, 16 bytes of filler are prepended
and the buffer is padded to the block size; filler and padding bytes both
carry the pad length (1-16).

    ENC plaintext layout:
    +---------------------+--------------------------+-------------------------+
    | filler (16 x pad)   | deflated raw stream      | padding (pad x pad)     |
    +---------------------+--------------------------+-------------------------+

Raw Stream

The raw stream is a series of records followed by a terminator record. There
is no index and no record count; lookups scan the stream linearly.

    Raw stream layout:
    +----------+---------+----------+-------------------------+
    | record 1 |   ...   | record n | terminator (5 x 0x00)   |
    +----------+---------+----------+-------------------------+

Record

    +-------------------------------+---------------------+----------------+---------+------+
    | content len + 1 (4 bytes, BE) | path len P (1 byte) | path (P bytes) | content | 0x00 |
    +-------------------------------+---------------------+----------------+---------+------+

Paths are stored without a NUL terminator and may not end in one. The C
mkrom tool stored the terminator as part of the path; Lookup accepts such
records. The C reader compares only the first P bytes of the query, so
against artifacts built here it also matches queries that merely start
with a stored path ("init.lua.bak" finds "init.lua").
*/
package romfs
